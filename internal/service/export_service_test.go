package service

import (
	"bytes"
	"testing"

	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/nbwschool/admission-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportService_WritesFilteredRows(t *testing.T) {
	store := testutil.NewRegistrationStore()
	m1 := testutil.ValidM1Form()
	store.Put(model.NewRegistration(m1))

	m4 := testutil.ValidM1Form()
	m4.IDCardOrPassport = "1609900654321"
	m4.GradeLevel = registration.GradeM4
	store.Put(model.NewRegistration(m4))

	svc := NewExportService(store)
	f := model.RegistrationFilter{GradeLevel: registration.GradeM1, Page: 2, PerPage: 1}
	assert.Equal(t, "registrations-m1.xlsx", svc.Filename(f))

	var buf bytes.Buffer
	n, err := svc.WriteXLSX(t.Context(), &buf, f)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "paging is ignored")

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "รหัสอ้างอิง", rows[0][0])
	assert.Contains(t, rows[1], "1609900123456")
	assert.Contains(t, rows[1], "รอตรวจสอบ")
}
