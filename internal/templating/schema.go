package templating

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Context is the data a template is rendered against. Every namespace and
// every field is optional; absent values resolve as missing.
type Context struct {
	Patient     *Patient     `json:"patient,omitempty"`
	Appointment *Appointment `json:"appointment,omitempty"`
	Clinic      *Clinic      `json:"clinic,omitempty"`
}

type Patient struct {
	ID            *string    `json:"id,omitempty"`
	FirstName     *string    `json:"firstName,omitempty"`
	LastName      *string    `json:"lastName,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	Email         *string    `json:"email,omitempty"`
	Balance       *float64   `json:"balance,omitempty"`
	Credits       *int       `json:"credits,omitempty"`
	HasPackage    *bool      `json:"hasPackage,omitempty"`
	PackageName   *string    `json:"packageName,omitempty"`
	LastVisit     *time.Time `json:"lastVisit,omitempty"`
	UpcomingCount *int       `json:"upcomingCount,omitempty"`
}

type Appointment struct {
	ID       *string    `json:"id,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	Time     *string    `json:"time,omitempty"`
	Duration *int       `json:"duration,omitempty"` // minutes
	Service  *string    `json:"service,omitempty"`
	Provider *string    `json:"provider,omitempty"`
	Location *string    `json:"location,omitempty"`
	Status   *string    `json:"status,omitempty"`
}

type Clinic struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	Website *string `json:"website,omitempty"`
}

// VariableType is the semantic type of a variable as shown to template authors.
type VariableType string

const (
	TypeText    VariableType = "text"
	TypeNumber  VariableType = "number"
	TypeBoolean VariableType = "boolean"
	TypeDate    VariableType = "date"
)

// Format selects how a resolved value is rendered into a message.
type Format string

const (
	FormatText     Format = "text"
	FormatNumber   Format = "number"
	FormatCurrency Format = "currency"
	FormatBoolean  Format = "boolean"
	FormatDate     Format = "date"
	FormatTime     Format = "time"
)

// Variable describes one entry of the variable schema.
type Variable struct {
	Name        string       `json:"name"`
	Type        VariableType `json:"type"`
	Format      Format       `json:"format"`
	Description string       `json:"description"`
	Calculated  bool         `json:"calculated,omitempty"`
}

type getter func(*Context) (any, bool)

type field struct {
	Variable
	get getter
}

type namespace struct {
	name    string
	present func(*Context) bool
	fields  []field
	index   map[string]int
}

func (n *namespace) lookup(name string) (*field, bool) {
	i, ok := n.index[name]
	if !ok {
		return nil, false
	}
	return &n.fields[i], true
}

// schema is built once at init and only read afterwards.
var schema = newSchema()

type registry struct {
	order      []*namespace
	namespaces map[string]*namespace
}

func newSchema() *registry {
	r := &registry{namespaces: make(map[string]*namespace)}
	r.add(patientNamespace())
	r.add(appointmentNamespace())
	r.add(clinicNamespace())
	return r
}

func (r *registry) add(n *namespace) {
	n.index = make(map[string]int, len(n.fields))
	for i, f := range n.fields {
		n.index[strings.TrimPrefix(f.Name, n.name+PathSeparator)] = i
	}
	r.order = append(r.order, n)
	r.namespaces[n.name] = n
}

// lookupField resolves "namespace.field" against the closed schema.
func lookupField(path string) (*field, bool) {
	ns, name, ok := strings.Cut(path, PathSeparator)
	if !ok || name == "" || strings.Contains(name, PathSeparator) {
		return nil, false
	}
	n, ok := schema.namespaces[ns]
	if !ok {
		return nil, false
	}
	return n.lookup(name)
}

func deref[T any](p *T) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}

func onPatient(get func(*Patient) (any, bool)) getter {
	return func(c *Context) (any, bool) {
		if c == nil || c.Patient == nil {
			return nil, false
		}
		return get(c.Patient)
	}
}

func onAppointment(get func(*Appointment) (any, bool)) getter {
	return func(c *Context) (any, bool) {
		if c == nil || c.Appointment == nil {
			return nil, false
		}
		return get(c.Appointment)
	}
}

func onClinic(get func(*Clinic) (any, bool)) getter {
	return func(c *Context) (any, bool) {
		if c == nil || c.Clinic == nil {
			return nil, false
		}
		return get(c.Clinic)
	}
}

func newField(name string, typ VariableType, format Format, description string, get getter) field {
	return field{
		Variable: Variable{Name: name, Type: typ, Format: format, Description: description},
		get:      get,
	}
}

func calculated(name, description string, get getter) field {
	f := newField(name, TypeText, FormatText, description, get)
	f.Calculated = true
	return f
}

func patientNamespace() *namespace {
	return &namespace{
		name:    NamespacePatient,
		present: func(c *Context) bool { return c != nil && c.Patient != nil },
		fields: []field{
			newField("patient.id", TypeText, FormatText, "Patient identifier",
				onPatient(func(p *Patient) (any, bool) { return deref(p.ID) })),
			newField("patient.firstName", TypeText, FormatText, "Patient first name",
				onPatient(func(p *Patient) (any, bool) { return deref(p.FirstName) })),
			newField("patient.lastName", TypeText, FormatText, "Patient last name",
				onPatient(func(p *Patient) (any, bool) { return deref(p.LastName) })),
			newField("patient.phone", TypeText, FormatText, "Patient phone number",
				onPatient(func(p *Patient) (any, bool) { return deref(p.Phone) })),
			newField("patient.email", TypeText, FormatText, "Patient email address",
				onPatient(func(p *Patient) (any, bool) { return deref(p.Email) })),
			newField("patient.balance", TypeNumber, FormatCurrency, "Patient account balance",
				onPatient(func(p *Patient) (any, bool) { return deref(p.Balance) })),
			newField("patient.credits", TypeNumber, FormatNumber, "Patient credits available",
				onPatient(func(p *Patient) (any, bool) { return deref(p.Credits) })),
			newField("patient.hasPackage", TypeBoolean, FormatBoolean, "Patient has an active package",
				onPatient(func(p *Patient) (any, bool) { return deref(p.HasPackage) })),
			newField("patient.packageName", TypeText, FormatText, "Patient package name",
				onPatient(func(p *Patient) (any, bool) { return deref(p.PackageName) })),
			newField("patient.lastVisit", TypeDate, FormatDate, "Date of last visit",
				onPatient(func(p *Patient) (any, bool) { return deref(p.LastVisit) })),
			newField("patient.upcomingCount", TypeNumber, FormatNumber, "Number of upcoming appointments",
				onPatient(func(p *Patient) (any, bool) { return deref(p.UpcomingCount) })),
			calculated("patient.fullName", "First and last name", onPatient(fullName)),
			calculated("patient.initials", "Patient initials", onPatient(initials)),
			calculated("patient.formattedPhone", "Phone number formatted for display", onPatient(formattedPhone)),
		},
	}
}

func appointmentNamespace() *namespace {
	return &namespace{
		name:    NamespaceAppointment,
		present: func(c *Context) bool { return c != nil && c.Appointment != nil },
		fields: []field{
			newField("appointment.id", TypeText, FormatText, "Appointment identifier",
				onAppointment(func(a *Appointment) (any, bool) { return deref(a.ID) })),
			newField("appointment.date", TypeDate, FormatDate, "Appointment date",
				onAppointment(func(a *Appointment) (any, bool) { return deref(a.Date) })),
			newField("appointment.time", TypeText, FormatTime, "Appointment time",
				onAppointment(func(a *Appointment) (any, bool) { return deref(a.Time) })),
			newField("appointment.duration", TypeNumber, FormatNumber, "Appointment duration in minutes",
				onAppointment(func(a *Appointment) (any, bool) { return deref(a.Duration) })),
			newField("appointment.service", TypeText, FormatText, "Service or treatment name",
				onAppointment(func(a *Appointment) (any, bool) { return deref(a.Service) })),
			newField("appointment.provider", TypeText, FormatText, "Provider name",
				onAppointment(func(a *Appointment) (any, bool) { return deref(a.Provider) })),
			newField("appointment.location", TypeText, FormatText, "Appointment location",
				onAppointment(func(a *Appointment) (any, bool) { return deref(a.Location) })),
			newField("appointment.status", TypeText, FormatText, "Appointment status",
				onAppointment(func(a *Appointment) (any, bool) { return deref(a.Status) })),
			calculated("appointment.dateTime", "Date and time, e.g. Jan 15 at 2:30 PM", onAppointment(dateTime)),
			calculated("appointment.durationHours", "Duration in hours", onAppointment(durationHours)),
		},
	}
}

func clinicNamespace() *namespace {
	return &namespace{
		name:    NamespaceClinic,
		present: func(c *Context) bool { return c != nil && c.Clinic != nil },
		fields: []field{
			newField("clinic.name", TypeText, FormatText, "Clinic name",
				onClinic(func(c *Clinic) (any, bool) { return deref(c.Name) })),
			newField("clinic.phone", TypeText, FormatText, "Clinic phone number",
				onClinic(func(c *Clinic) (any, bool) { return deref(c.Phone) })),
			newField("clinic.address", TypeText, FormatText, "Clinic address",
				onClinic(func(c *Clinic) (any, bool) { return deref(c.Address) })),
			newField("clinic.website", TypeText, FormatText, "Clinic website",
				onClinic(func(c *Clinic) (any, bool) { return deref(c.Website) })),
		},
	}
}

func fullName(p *Patient) (any, bool) {
	var parts []string
	for _, s := range []*string{p.FirstName, p.LastName} {
		if s != nil && strings.TrimSpace(*s) != "" {
			parts = append(parts, strings.TrimSpace(*s))
		}
	}
	if len(parts) == 0 {
		return nil, false
	}
	return strings.Join(parts, " "), true
}

func initials(p *Patient) (any, bool) {
	var b strings.Builder
	for _, s := range []*string{p.FirstName, p.LastName} {
		if s == nil {
			continue
		}
		for _, r := range strings.TrimSpace(*s) {
			b.WriteRune(unicode.ToUpper(r))
			break
		}
	}
	if b.Len() == 0 {
		return nil, false
	}
	return b.String(), true
}

func formattedPhone(p *Patient) (any, bool) {
	if p.Phone == nil || *p.Phone == "" {
		return nil, false
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, *p.Phone)

	switch {
	case len(digits) == 10:
		return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:]), true
	case len(digits) == 11 && digits[0] == '1':
		return fmt.Sprintf("+1 (%s) %s-%s", digits[1:4], digits[4:7], digits[7:]), true
	default:
		return *p.Phone, true
	}
}

func dateTime(a *Appointment) (any, bool) {
	if a.Date == nil || a.Time == nil || *a.Time == "" {
		return nil, false
	}
	return formatDate(*a.Date) + DateTimeJoin + formatClock(*a.Time), true
}

func durationHours(a *Appointment) (any, bool) {
	if a.Duration == nil || *a.Duration <= 0 {
		return nil, false
	}
	if *a.Duration == 60 {
		return DurationOneHour, true
	}
	hours := strconv.FormatFloat(float64(*a.Duration)/60, 'f', 1, 64)
	hours = strings.TrimSuffix(hours, ".0")
	return fmt.Sprintf(DurationHoursFmt, hours), true
}
