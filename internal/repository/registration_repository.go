package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/registration"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateNationalID = errors.New("registration with this national id already exists")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const registrationColumns = `id::text, id_card_or_passport, grade_level, is_special_ism,
	title, first_name_th, last_name_th, to_char(birth_date, 'YYYY-MM-DD'), ethnicity, nationality, religion, phone,
	siblings, siblings_in_school,
	education_status, school_name, school_province, school_district, school_subdistrict,
	village_name, house_number, moo, road, soi, province, district, subdistrict, postal_code,
	gpa_grade4, gpa_grade5, gpa_science, gpa_math, gpa_english, gpa_cumulative,
	house_registration_url, transcript_url, photo_url, supplementary_documents,
	status, created_at, updated_at`

func scanRegistration(row pgx.Row) (*model.Registration, error) {
	r := &model.Registration{}
	err := row.Scan(
		&r.ID, &r.IDCardOrPassport, &r.GradeLevel, &r.IsSpecialISM,
		&r.Title, &r.FirstNameTH, &r.LastNameTH, &r.BirthDate, &r.Ethnicity, &r.Nationality, &r.Religion, &r.Phone,
		&r.Siblings, &r.SiblingsInSchool,
		&r.EducationStatus, &r.SchoolName, &r.SchoolProvince, &r.SchoolDistrict, &r.SchoolSubdistrict,
		&r.VillageName, &r.HouseNumber, &r.Moo, &r.Road, &r.Soi, &r.Province, &r.District, &r.Subdistrict, &r.PostalCode,
		&r.GPAGrade4, &r.GPAGrade5, &r.GPAScience, &r.GPAMath, &r.GPAEnglish, &r.GPACumulative,
		&r.HouseRegistrationURL, &r.TranscriptURL, &r.PhotoURL, &r.SupplementaryDocuments,
		&r.Status, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if r.SupplementaryDocuments == nil {
		r.SupplementaryDocuments = []string{}
	}
	return r, nil
}

// RegistrationRepository is the Registration Store. The unique index on
// id_card_or_passport is the only duplicate check.
type RegistrationRepository struct {
	pool *pgxpool.Pool
}

// NewRegistrationRepository creates a new RegistrationRepository.
func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

// Create inserts a registration and fills in its ID, status and timestamps.
func (r *RegistrationRepository) Create(ctx context.Context, reg *model.Registration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	docs := reg.SupplementaryDocuments
	if docs == nil {
		docs = []string{}
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO registrations (
			id, id_card_or_passport, grade_level, is_special_ism,
			title, first_name_th, last_name_th, birth_date, ethnicity, nationality, religion, phone,
			siblings, siblings_in_school,
			education_status, school_name, school_province, school_district, school_subdistrict,
			village_name, house_number, moo, road, soi, province, district, subdistrict, postal_code,
			gpa_grade4, gpa_grade5, gpa_science, gpa_math, gpa_english, gpa_cumulative,
			house_registration_url, transcript_url, photo_url, supplementary_documents
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14,
			$15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24, $25, $26, $27, $28,
			$29, $30, $31, $32, $33, $34,
			$35, $36, $37, $38
		)
		RETURNING status, created_at, updated_at`,
		reg.ID, reg.IDCardOrPassport, string(reg.GradeLevel), reg.IsSpecialISM,
		reg.Title, reg.FirstNameTH, reg.LastNameTH, reg.BirthDate, reg.Ethnicity, reg.Nationality, reg.Religion, reg.Phone,
		reg.Siblings, reg.SiblingsInSchool,
		reg.EducationStatus, reg.SchoolName, reg.SchoolProvince, reg.SchoolDistrict, reg.SchoolSubdistrict,
		reg.VillageName, reg.HouseNumber, reg.Moo, reg.Road, reg.Soi, reg.Province, reg.District, reg.Subdistrict, reg.PostalCode,
		reg.GPAGrade4, reg.GPAGrade5, reg.GPAScience, reg.GPAMath, reg.GPAEnglish, reg.GPACumulative,
		reg.HouseRegistrationURL, reg.TranscriptURL, reg.PhotoURL, docs,
	).Scan(&reg.Status, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateNationalID
		}
		return err
	}
	reg.SupplementaryDocuments = docs
	return nil
}

// GetByID retrieves a registration by ID. Malformed IDs are reported as not found.
func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}
	return scanRegistration(r.pool.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id))
}

// GetByNationalID retrieves a registration by its natural key.
func (r *RegistrationRepository) GetByNationalID(ctx context.Context, nationalID string) (*model.Registration, error) {
	return scanRegistration(r.pool.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id_card_or_passport = $1`, nationalID))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string { return likeEscaper.Replace(s) }

func registrationWhere(f model.RegistrationFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if f.GradeLevel != "" {
		add("grade_level = ?", string(f.GradeLevel))
	}
	if f.Status != "" {
		add("status = ?", string(f.Status))
	}
	if f.IsSpecialISM != nil {
		add("is_special_ism = ?", *f.IsSpecialISM)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%", q)
		like, exact := "$"+strconv.Itoa(len(args)-1)+` ESCAPE '\'`, "$"+strconv.Itoa(len(args))
		conds = append(conds, `(first_name_th ILIKE `+like+` OR last_name_th ILIKE `+like+
			` OR id_card_or_passport LIKE `+like+` OR phone LIKE `+like+` OR school_name ILIKE `+like+
			` OR UPPER(RIGHT(id::text, 8)) = UPPER(`+exact+`))`)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page of registrations matching f, newest first, and the
// total match count.
func (r *RegistrationRepository) List(ctx context.Context, f model.RegistrationFilter) ([]model.Registration, int, error) {
	where, args := registrationWhere(f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM registrations`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + registrationColumns + ` FROM registrations` + where +
		` ORDER BY created_at DESC, id LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, f.PerPage, f.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	regs := []model.Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, 0, err
		}
		regs = append(regs, *reg)
	}
	return regs, total, rows.Err()
}

// Each streams every registration matching f (ignoring paging) in creation
// order.
func (r *RegistrationRepository) Each(ctx context.Context, f model.RegistrationFilter, fn func(*model.Registration) error) error {
	where, args := registrationWhere(f)
	rows, err := r.pool.Query(ctx,
		`SELECT `+registrationColumns+` FROM registrations`+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return err
		}
		if err := fn(reg); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ListAdmitted returns approved registrations, optionally for one grade level.
func (r *RegistrationRepository) ListAdmitted(ctx context.Context, level registration.GradeLevel) ([]model.Registration, error) {
	regs := []model.Registration{}
	err := r.Each(ctx, model.RegistrationFilter{GradeLevel: level, Status: model.StatusApproved}, func(reg *model.Registration) error {
		regs = append(regs, *reg)
		return nil
	})
	return regs, err
}

// editableColumns guards UpdateFields against column injection.
var editableColumns = []string{
	"grade_level", "is_special_ism", "title", "first_name_th", "last_name_th", "birth_date",
	"ethnicity", "nationality", "religion", "phone", "siblings", "siblings_in_school",
	"education_status", "school_name", "school_province", "school_district", "school_subdistrict",
	"village_name", "house_number", "moo", "road", "soi", "province", "district", "subdistrict", "postal_code",
	"gpa_grade4", "gpa_grade5", "gpa_science", "gpa_math", "gpa_english", "gpa_cumulative",
}

// UpdateFields sets the given columns. Keys outside the editable set,
// id_card_or_passport included, are rejected.
func (r *RegistrationRepository) UpdateFields(ctx context.Context, id string, cols map[string]any) (*model.Registration, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}
	if len(cols) == 0 {
		return r.GetByID(ctx, id)
	}

	names := make([]string, 0, len(cols))
	for name := range cols {
		if !slices.Contains(editableColumns, name) {
			return nil, fmt.Errorf("column %q is not editable", name)
		}
		names = append(names, name)
	}
	slices.Sort(names)

	sets := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+1)
	for i, name := range names {
		sets = append(sets, name+" = $"+strconv.Itoa(i+1))
		args = append(args, cols[name])
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	return scanRegistration(r.pool.QueryRow(ctx,
		`UPDATE registrations SET `+strings.Join(sets, ", ")+
			` WHERE id = $`+strconv.Itoa(len(args))+` RETURNING `+registrationColumns,
		args...))
}

// UpdateStatus sets the review status.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id string, status model.RegistrationStatus) (*model.Registration, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}
	return scanRegistration(r.pool.QueryRow(ctx,
		`UPDATE registrations SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING `+registrationColumns,
		string(status), id))
}

// SetDocument stores url (nil clears) in a named slot and returns the URL it
// replaced.
func (r *RegistrationRepository) SetDocument(ctx context.Context, id string, slot registration.DocumentSlot, url *string) (*model.Registration, *string, error) {
	if uuid.Validate(id) != nil {
		return nil, nil, ErrNotFound
	}
	if _, err := registration.ParseDocumentSlot(string(slot)); err != nil {
		return nil, nil, err
	}
	col := slot.URLField()

	var (
		reg      *model.Registration
		previous *string
	)
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `SELECT `+col+` FROM registrations WHERE id = $1 FOR UPDATE`, id).Scan(&previous)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		reg, err = scanRegistration(tx.QueryRow(ctx,
			`UPDATE registrations SET `+col+` = $1, updated_at = NOW() WHERE id = $2 RETURNING `+registrationColumns,
			url, id))
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return reg, previous, nil
}

// AppendDocument adds url to the end of the supplementary documents.
func (r *RegistrationRepository) AppendDocument(ctx context.Context, id, url string) (*model.Registration, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}
	return scanRegistration(r.pool.QueryRow(ctx,
		`UPDATE registrations SET supplementary_documents = array_append(supplementary_documents, $1), updated_at = NOW()
		 WHERE id = $2 RETURNING `+registrationColumns,
		url, id))
}

// RemoveDocument drops every supplementary entry equal to url, keeping the
// order of the rest.
func (r *RegistrationRepository) RemoveDocument(ctx context.Context, id, url string) (*model.Registration, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}
	return scanRegistration(r.pool.QueryRow(ctx,
		`UPDATE registrations SET supplementary_documents = array_remove(supplementary_documents, $1), updated_at = NOW()
		 WHERE id = $2 RETURNING `+registrationColumns,
		url, id))
}

// Delete removes a registration and returns what was deleted.
func (r *RegistrationRepository) Delete(ctx context.Context, id string) (*model.Registration, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}
	return scanRegistration(r.pool.QueryRow(ctx,
		`DELETE FROM registrations WHERE id = $1 RETURNING `+registrationColumns, id))
}
