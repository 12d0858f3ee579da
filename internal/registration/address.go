package registration

import (
	"slices"
	"strings"
)

// Cascade is one Province → District → Subdistrict selection.
type Cascade struct {
	Province    string `json:"province"`
	District    string `json:"district"`
	Subdistrict string `json:"subdistrict"`
}

// WithProvince selects a province. Choosing a different province resets the
// lower levels.
func (c Cascade) WithProvince(province string) Cascade {
	if province == c.Province {
		return c
	}
	return Cascade{Province: province}
}

// WithDistrict selects a district and resets the subdistrict when it changes.
// A district cannot be chosen before its province.
func (c Cascade) WithDistrict(district string) Cascade {
	if c.Province == "" || district == c.District {
		return c
	}
	return Cascade{Province: c.Province, District: district}
}

// WithSubdistrict selects a subdistrict once a district is chosen.
func (c Cascade) WithSubdistrict(subdistrict string) Cascade {
	if c.District == "" {
		return c
	}
	c.Subdistrict = subdistrict
	return c
}

// Reconcile moves from old to next one level at a time, so lower levels the
// caller did not set explicitly are reset when a parent changes.
func Reconcile(old, next Cascade, districtSet, subdistrictSet bool) Cascade {
	c := old.WithProvince(next.Province)
	if districtSet {
		c = c.WithDistrict(next.District)
	}
	if subdistrictSet {
		c = c.WithSubdistrict(next.Subdistrict)
	}
	return c
}

// LevelState describes how one cascade level is presented.
type LevelState struct {
	Value    string   `json:"value"`
	Options  []string `json:"options,omitempty"`
	FreeText bool     `json:"free_text"`
	Disabled bool     `json:"disabled"`
	Locked   bool     `json:"locked,omitempty"`
}

// CascadeFields is the presentation of a whole cascade.
type CascadeFields struct {
	Province    LevelState `json:"province"`
	District    LevelState `json:"district"`
	Subdistrict LevelState `json:"subdistrict"`
}

// Fields reports options for each level. A level with no table entry falls
// back to free text; every level below an empty parent is disabled.
func (c Cascade) Fields() CascadeFields {
	out := CascadeFields{
		Province: LevelState{Value: c.Province, Options: Provinces()},
	}

	out.District = LevelState{Value: c.District, Disabled: c.Province == ""}
	if districts, ok := Districts(c.Province); ok {
		out.District.Options = districts
	} else {
		out.District.FreeText = true
	}

	out.Subdistrict = LevelState{Value: c.Subdistrict, Disabled: c.District == ""}
	if subs, ok := Subdistricts(c.Province, c.District); ok {
		out.Subdistrict.Options = subs
	} else {
		out.Subdistrict.FreeText = true
	}
	return out
}

// Provinces returns every province name.
func Provinces() []string {
	return slices.Clone(provinces)
}

// Districts returns the district table for province.
func Districts(province string) ([]string, bool) {
	d, ok := districtsByProvince[strings.TrimSpace(province)]
	return slices.Clone(d), ok
}

// Subdistricts returns the subdistrict table keyed by "<province>-<district>".
func Subdistricts(province, district string) ([]string, bool) {
	s, ok := subdistrictsByDistrict[subdistrictKey(province, district)]
	return slices.Clone(s), ok
}

func subdistrictKey(province, district string) string {
	return strings.TrimSpace(province) + "-" + strings.TrimSpace(district)
}

// School is an entry of the local school registry.
type School struct {
	Name        string `json:"name"`
	Subdistrict string `json:"subdistrict"`
}

// Schools returns the registry for a district, or nil when the district has
// no registry.
func Schools(province, district string) []School {
	if strings.TrimSpace(province) != HomeProvince || strings.TrimSpace(district) != HomeDistrict {
		return nil
	}
	return slices.Clone(localSchools)
}

// LookupSchool resolves a school name inside the school cascade's district.
func LookupSchool(c Cascade, name string) (School, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return School{}, false
	}
	for _, s := range Schools(c.Province, c.District) {
		if s.Name == name {
			return s, true
		}
	}
	return School{}, false
}

// ApplySchoolLock derives the school subdistrict from the registry when the
// school is a recognized local school. It reports whether the subdistrict is
// locked.
func ApplySchoolLock(f *Form) bool {
	s, ok := LookupSchool(f.SchoolCascade(), f.SchoolName)
	if !ok {
		return false
	}
	f.SchoolSubdistrict = s.Subdistrict
	return true
}

// SchoolFields is Fields for the school cascade, with the subdistrict locked
// while a registry school is selected.
func SchoolFields(f *Form) CascadeFields {
	fields := f.SchoolCascade().Fields()
	if s, ok := LookupSchool(f.SchoolCascade(), f.SchoolName); ok {
		fields.Subdistrict.Value = s.Subdistrict
		fields.Subdistrict.Locked = true
		fields.Subdistrict.Disabled = true
	}
	return fields
}
