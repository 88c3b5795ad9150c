package crs

// Project pairs the project CRS with the registry used to build transforms
type Project struct {
	*Registry
	crs CRS
}

// NewProject creates a project in the given CRS. A nil registry is
// replaced with NewRegistry().
func NewProject(c CRS, reg *Registry) *Project {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Project{Registry: reg, crs: c}
}

// CRS returns the project CRS
func (p *Project) CRS() CRS { return p.crs }

// SetCRS changes the project CRS
func (p *Project) SetCRS(c CRS) { p.crs = c }
