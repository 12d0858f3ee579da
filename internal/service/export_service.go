package service

import (
	"context"
	"fmt"
	"io"

	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "ผู้สมัคร"

var statusLabels = map[model.RegistrationStatus]string{
	model.StatusPending:  "รอตรวจสอบ",
	model.StatusApproved: "ผ่านการคัดเลือก",
	model.StatusRejected: "ไม่ผ่านการคัดเลือก",
}

type exportColumn struct {
	header string
	width  float64
	value  func(r *model.Registration) any
}

func score(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

var exportColumns = []exportColumn{
	{"รหัสอ้างอิง", 12, func(r *model.Registration) any { return model.ReferenceCode(r.ID) }},
	{"วันที่สมัคร", 18, func(r *model.Registration) any { return r.CreatedAt.Format("2006-01-02 15:04") }},
	{"ระดับชั้น", 10, func(r *model.Registration) any { return registration.ResolveGrade(r.GradeLevel).DisplayName }},
	{"ประเภทห้องเรียน", 16, func(r *model.Registration) any {
		if r.IsSpecialISM {
			return "ห้องเรียนพิเศษ ISM"
		}
		return "ห้องเรียนปกติ"
	}},
	{"สถานะ", 16, func(r *model.Registration) any { return statusLabels[r.Status] }},
	{"เลขประจำตัวประชาชน", 18, func(r *model.Registration) any { return r.IDCardOrPassport }},
	{"คำนำหน้า", 8, func(r *model.Registration) any { return r.Title }},
	{"ชื่อ", 16, func(r *model.Registration) any { return r.FirstNameTH }},
	{"นามสกุล", 16, func(r *model.Registration) any { return r.LastNameTH }},
	{"วันเกิด", 12, func(r *model.Registration) any { return r.BirthDate }},
	{"เชื้อชาติ", 10, func(r *model.Registration) any { return r.Ethnicity }},
	{"สัญชาติ", 10, func(r *model.Registration) any { return r.Nationality }},
	{"ศาสนา", 10, func(r *model.Registration) any { return r.Religion }},
	{"เบอร์โทรศัพท์", 14, func(r *model.Registration) any { return r.Phone }},
	{"จำนวนพี่น้อง", 10, func(r *model.Registration) any { return r.Siblings }},
	{"พี่น้องในโรงเรียน", 12, func(r *model.Registration) any { return r.SiblingsInSchool }},
	{"บ้านเลขที่", 10, func(r *model.Registration) any { return r.HouseNumber }},
	{"หมู่", 6, func(r *model.Registration) any { return r.Moo }},
	{"หมู่บ้าน", 14, func(r *model.Registration) any { return r.VillageName }},
	{"ถนน", 12, func(r *model.Registration) any { return r.Road }},
	{"ซอย", 12, func(r *model.Registration) any { return r.Soi }},
	{"ตำบล", 14, func(r *model.Registration) any { return r.Subdistrict }},
	{"อำเภอ", 14, func(r *model.Registration) any { return r.District }},
	{"จังหวัด", 14, func(r *model.Registration) any { return r.Province }},
	{"รหัสไปรษณีย์", 10, func(r *model.Registration) any { return r.PostalCode }},
	{"สถานะการศึกษา", 22, func(r *model.Registration) any {
		return registration.ResolveGrade(r.GradeLevel).EducationStatusLabel(r.EducationStatus)
	}},
	{"โรงเรียนเดิม", 24, func(r *model.Registration) any { return r.SchoolName }},
	{"ตำบลโรงเรียน", 14, func(r *model.Registration) any { return r.SchoolSubdistrict }},
	{"อำเภอโรงเรียน", 14, func(r *model.Registration) any { return r.SchoolDistrict }},
	{"จังหวัดโรงเรียน", 14, func(r *model.Registration) any { return r.SchoolProvince }},
	{"เกรดเฉลี่ย ป.4", 10, func(r *model.Registration) any { return score(r.GPAGrade4) }},
	{"เกรดเฉลี่ย ป.5", 10, func(r *model.Registration) any { return score(r.GPAGrade5) }},
	{"เกรดวิทยาศาสตร์", 10, func(r *model.Registration) any { return score(r.GPAScience) }},
	{"เกรดคณิตศาสตร์", 10, func(r *model.Registration) any { return score(r.GPAMath) }},
	{"เกรดภาษาอังกฤษ", 10, func(r *model.Registration) any { return score(r.GPAEnglish) }},
	{"เกรดเฉลี่ยสะสม", 10, func(r *model.Registration) any { return score(r.GPACumulative) }},
	{"สำเนาทะเบียนบ้าน", 30, func(r *model.Registration) any { return strOrEmpty(r.HouseRegistrationURL) }},
	{"ระเบียนแสดงผลการเรียน", 30, func(r *model.Registration) any { return strOrEmpty(r.TranscriptURL) }},
	{"รูปถ่าย", 30, func(r *model.Registration) any { return strOrEmpty(r.PhotoURL) }},
	{"เอกสารเพิ่มเติม", 12, func(r *model.Registration) any { return len(r.SupplementaryDocuments) }},
}

// ExportService writes registration lists as Excel workbooks.
type ExportService struct {
	repo RegistrationStore
}

func NewExportService(repo RegistrationStore) *ExportService {
	return &ExportService{repo: repo}
}

// Filename suggests a download name for an export of f.
func (s *ExportService) Filename(f model.RegistrationFilter) string {
	name := "registrations"
	if f.GradeLevel != "" {
		name += "-" + string(f.GradeLevel)
	}
	if f.Status != "" {
		name += "-" + string(f.Status)
	}
	return name + ".xlsx"
}

// WriteXLSX streams every registration matching f (paging ignored) into w
// and returns the row count.
func (s *ExportService) WriteXLSX(ctx context.Context, w io.Writer, f model.RegistrationFilter) (int, error) {
	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName("Sheet1", exportSheet); err != nil {
		return 0, err
	}
	sw, err := book.NewStreamWriter(exportSheet)
	if err != nil {
		return 0, err
	}

	headerStyle, err := book.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return 0, err
	}

	header := make([]any, len(exportColumns))
	for i, col := range exportColumns {
		header[i] = col.header
		if err := sw.SetColWidth(i+1, i+1, col.width); err != nil {
			return 0, err
		}
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return 0, err
	}

	rows := 0
	err = s.repo.Each(ctx, f, func(r *model.Registration) error {
		rows++
		values := make([]any, len(exportColumns))
		for i, col := range exportColumns {
			values[i] = col.value(r)
		}
		cell, err := excelize.CoordinatesToCellName(1, rows+1)
		if err != nil {
			return err
		}
		return sw.SetRow(cell, values)
	})
	if err != nil {
		return 0, fmt.Errorf("export rows: %w", err)
	}

	if err := sw.Flush(); err != nil {
		return 0, err
	}
	if err := book.Write(w); err != nil {
		return 0, err
	}
	return rows, nil
}
