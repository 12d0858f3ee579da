package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/nbwschool/admission-backend/internal/config"
	"github.com/nbwschool/admission-backend/internal/database"
	"github.com/nbwschool/admission-backend/internal/logger"
	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/nbwschool/admission-backend/internal/repository"
)

var (
	firstNames = []string{
		"สมชาย", "สมหญิง", "ณัฐพล", "กัญญา", "ธนากร", "พิมพ์ชนก", "วีรภัทร", "ปวีณา",
		"ชยพล", "ศิริพร", "อนุชา", "จิราพร", "ภูมิพัฒน์", "กมลชนก", "ธีรเดช", "สุนิสา",
	}
	lastNames = []string{
		"ใจดี", "ศรีสุข", "บุญมา", "แก้วประเสริฐ", "ทองคำ", "มั่นคง", "สายสุวรรณ", "พรหมมา",
	}
	m1Schools = []string{"โรงเรียนอนุบาลหนองบัว", "โรงเรียนบ้านหนองกลับ", "โรงเรียนวัดหนองบัว"}
	m4Schools = []string{"โรงเรียนหนองบัว", "โรงเรียนหนองกลับวิทยา"}
)

func main() {
	count := flag.Int("n", 50, "number of registrations to create")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	repo := repository.NewRegistrationRepository(pool)
	rng := rand.New(rand.NewPCG(*seed, *seed>>1))

	subdistricts, _ := registration.Subdistricts(registration.HomeProvince, registration.HomeDistrict)
	if len(subdistricts) == 0 {
		log.Fatal().Msg("No subdistricts known for the home district")
	}

	fmt.Printf("=== Seeding %d Registrations ===\n", *count)

	successCount := 0
	for i := 0; i < *count; i++ {
		form := randomForm(rng, subdistricts)
		reg := model.NewRegistration(form)

		if err := repo.Create(ctx, reg); err != nil {
			if errors.Is(err, repository.ErrDuplicateNationalID) {
				fmt.Printf("Skipping duplicate national ID %s\n", form.IDCardOrPassport)
				continue
			}
			fmt.Printf("Error creating registration for %s %s: %v\n", form.FirstNameTH, form.LastNameTH, err)
			continue
		}

		// Roughly a third of seeded applicants get a decision.
		var decision model.RegistrationStatus
		switch rng.IntN(6) {
		case 0:
			decision = model.StatusApproved
		case 1:
			decision = model.StatusRejected
		}
		if decision != "" {
			if _, err := repo.UpdateStatus(ctx, reg.ID, decision); err != nil {
				fmt.Printf("Error updating status of %s: %v\n", reg.ID, err)
			}
		}

		successCount++
		if (i+1)%10 == 0 {
			fmt.Printf("Created %d registrations...\n", i+1)
		}
	}

	fmt.Printf("\nSeed completed! Successfully added %d/%d registrations.\n", successCount, *count)
}

func randomForm(rng *rand.Rand, subdistricts []string) registration.Form {
	level := registration.GradeM1
	if rng.IntN(2) == 1 {
		level = registration.GradeM4
	}

	siblings := rng.IntN(4)
	inSchool := 0
	if siblings > 0 {
		inSchool = rng.IntN(siblings + 1)
	}

	f := registration.Form{
		IDCardOrPassport: nationalID(rng),
		GradeLevel:       level,
		IsSpecialISM:     rng.IntN(4) == 0,
		FirstNameTH:      firstNames[rng.IntN(len(firstNames))],
		LastNameTH:       lastNames[rng.IntN(len(lastNames))],
		Ethnicity:        "ไทย",
		Nationality:      "ไทย",
		Religion:         "พุทธ",
		Phone:            fmt.Sprintf("08%08d", rng.IntN(100000000)),
		Siblings:         &siblings,
		SiblingsInSchool: &inSchool,
		SchoolProvince:   registration.HomeProvince,
		SchoolDistrict:   registration.HomeDistrict,
		HouseNumber:      fmt.Sprintf("%d/%d", rng.IntN(200)+1, rng.IntN(9)+1),
		Moo:              fmt.Sprint(rng.IntN(12) + 1),
		Province:         registration.HomeProvince,
		District:         registration.HomeDistrict,
		Subdistrict:      subdistricts[rng.IntN(len(subdistricts))],
		PostalCode:       "60110",
	}
	f.SchoolSubdistrict = f.Subdistrict

	if level == registration.GradeM1 {
		f.Title = "เด็กชาย"
		f.BirthDate = randomBirthDate(rng, 12)
		f.EducationStatus = registration.EducationStudyingP6
		f.SchoolName = m1Schools[rng.IntN(len(m1Schools))]
		f.GPAGrade4 = gpa(rng)
		f.GPAGrade5 = gpa(rng)
	} else {
		f.Title = "นาย"
		f.BirthDate = randomBirthDate(rng, 15)
		f.EducationStatus = registration.EducationStudyingM3
		f.SchoolName = m4Schools[rng.IntN(len(m4Schools))]
		f.GPAScience = gpa(rng)
		f.GPAMath = gpa(rng)
		f.GPAEnglish = gpa(rng)
		f.GPACumulative = gpa(rng)
	}
	return f
}

// nationalID builds a 13-digit Thai ID with a valid mod-11 check digit.
func nationalID(rng *rand.Rand) string {
	digits := make([]int, 12)
	digits[0] = 1
	for i := 1; i < 12; i++ {
		digits[i] = rng.IntN(10)
	}
	sum := 0
	for i, d := range digits {
		sum += d * (13 - i)
	}
	check := (11 - sum%11) % 10

	out := make([]byte, 0, 13)
	for _, d := range digits {
		out = append(out, byte('0'+d))
	}
	return string(append(out, byte('0'+check)))
}

func randomBirthDate(rng *rand.Rand, age int) string {
	born := time.Now().AddDate(-age, -rng.IntN(12), -rng.IntN(28))
	return born.Format(registration.BirthDateLayout)
}

func gpa(rng *rand.Rand) *float64 {
	v := float64(200+rng.IntN(201)) / 100
	return &v
}
