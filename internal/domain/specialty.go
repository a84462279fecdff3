package domain

// Specialty — элемент фиксированного каталога специальностей.
type Specialty struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Specialties — каталог, отдаваемый эндпоинтом /specialties. Порядок стабильный.
var Specialties = []Specialty{
	{ID: "psiquiatria", Label: "Psiquiatría"},
	{ID: "psicologia_clinica", Label: "Psicología Clínica"},
	{ID: "infanto_juvenil", Label: "Psicología Infantil y Adolescente"},
	{ID: "pareja_familia", Label: "Terapia de Pareja y Familia"},
	{ID: "neuropsicologia", Label: "Neuropsicología"},
	{ID: "sexologia_clinica", Label: "Sexología Clínica"},
	{ID: "adicciones", Label: "Adicciones"},
	{ID: "gerontopsicologia", Label: "Psicología Geriátrica"},
	{ID: "psicologia_salud", Label: "Psicología de la Salud"},
	{ID: "evaluacion_psicologica", Label: "Evaluación/Peritaje Psicológico"},
	{ID: "psicologia_educativa", Label: "Psicología Educativa"},
	{ID: "otro", Label: "Otro"},
}

func IsValidSpecialty(id string) bool {
	for _, s := range Specialties {
		if s.ID == id {
			return true
		}
	}
	return false
}
