// Package directory holds the clinic's doctor reference data: which doctors
// practice in which department and what they charge. The catalog is injected
// configuration — a JSON file can override the built-in default — so the
// roster can change without a rebuild.
package directory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Doctor is a single directory entry.
type Doctor struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Fee       int64  `json:"fee"` // consultation fee, whole USD
}

// Department pairs a department name with its doctor roster.
type Department struct {
	Name    string
	Doctors []Doctor
}

// Directory maps department names to their ordered doctor lists. Departments
// keep the order the catalog listed them in.
type Directory struct {
	order       []string
	departments map[string][]Doctor
}

// New builds a directory from an ordered department list.
func New(departments []Department) *Directory {
	d := &Directory{departments: make(map[string][]Doctor, len(departments))}
	for _, dept := range departments {
		if _, seen := d.departments[dept.Name]; !seen {
			d.order = append(d.order, dept.Name)
		}
		d.departments[dept.Name] = append([]Doctor(nil), dept.Doctors...)
	}
	return d
}

// LoadFile reads a catalog override from a JSON file shaped like
// {"Cardiology": [{"name": ..., "specialty": ..., "fee": ...}], ...}.
// Departments keep the order they appear in the file.
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("directory: read catalog: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("directory: parse catalog: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("directory: catalog %s is not a JSON object", path)
	}
	var departments []Department
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("directory: parse catalog: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("directory: catalog %s has a non-string key", path)
		}
		var docs []Doctor
		if err := dec.Decode(&docs); err != nil {
			return nil, fmt.Errorf("directory: parse catalog %s department %s: %w", path, name, err)
		}
		departments = append(departments, Department{Name: name, Doctors: docs})
	}
	if len(departments) == 0 {
		return nil, fmt.Errorf("directory: catalog %s has no departments", path)
	}
	return New(departments), nil
}

// Departments returns the department names in catalog order.
func (d *Directory) Departments() []string {
	return append([]string(nil), d.order...)
}

// Doctors returns the doctor list for a department, in catalog order.
// The slice is a copy; callers may not mutate the catalog.
func (d *Directory) Doctors(department string) []Doctor {
	return append([]Doctor(nil), d.departments[department]...)
}

// Find looks up a doctor by department and name.
func (d *Directory) Find(department, name string) (Doctor, bool) {
	for _, doc := range d.departments[department] {
		if doc.Name == name {
			return doc, true
		}
	}
	return Doctor{}, false
}

// Catalog returns the full department map for serialization.
func (d *Directory) Catalog() map[string][]Doctor {
	copied := make(map[string][]Doctor, len(d.departments))
	for dept, docs := range d.departments {
		copied[dept] = append([]Doctor(nil), docs...)
	}
	return copied
}

// Default returns the built-in catalog: eight departments, two doctors each.
func Default() *Directory {
	return New([]Department{
		{Name: "Cardiology", Doctors: []Doctor{
			{Name: "Dr. Sarah Johnson", Specialty: "Cardiologist", Fee: 150},
			{Name: "Dr. Michael Chen", Specialty: "Cardiac Surgeon", Fee: 200},
		}},
		{Name: "Neurology", Doctors: []Doctor{
			{Name: "Dr. Emily Davis", Specialty: "Neurologist", Fee: 175},
			{Name: "Dr. Robert Miller", Specialty: "Neurosurgeon", Fee: 225},
		}},
		{Name: "Orthopedics", Doctors: []Doctor{
			{Name: "Dr. James Wilson", Specialty: "Orthopedic Surgeon", Fee: 160},
			{Name: "Dr. Lisa Anderson", Specialty: "Sports Medicine", Fee: 140},
		}},
		{Name: "Pediatrics", Doctors: []Doctor{
			{Name: "Dr. Maria Garcia", Specialty: "Pediatrician", Fee: 120},
			{Name: "Dr. David Brown", Specialty: "Pediatric Specialist", Fee: 130},
		}},
		{Name: "Dermatology", Doctors: []Doctor{
			{Name: "Dr. Jennifer Lee", Specialty: "Dermatologist", Fee: 135},
			{Name: "Dr. Thomas White", Specialty: "Cosmetic Dermatology", Fee: 180},
		}},
		{Name: "Ophthalmology", Doctors: []Doctor{
			{Name: "Dr. Patricia Martinez", Specialty: "Ophthalmologist", Fee: 145},
			{Name: "Dr. Christopher Taylor", Specialty: "Eye Surgeon", Fee: 195},
		}},
		{Name: "Dentistry", Doctors: []Doctor{
			{Name: "Dr. Amanda Clark", Specialty: "General Dentist", Fee: 100},
			{Name: "Dr. Kevin Rodriguez", Specialty: "Orthodontist", Fee: 150},
		}},
		{Name: "General Medicine", Doctors: []Doctor{
			{Name: "Dr. Nancy King", Specialty: "General Physician", Fee: 80},
			{Name: "Dr. Steven Wright", Specialty: "Family Medicine", Fee: 90},
		}},
	})
}
