package templates

// Channels
const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// Categories
const (
	CategoryAppointment    = "appointment"
	CategoryTreatment      = "treatment"
	CategoryFollowup       = "followup"
	CategoryMarketing      = "marketing"
	CategoryFinancial      = "financial"
	CategoryMembership     = "membership"
	CategoryReview         = "review"
	CategoryEmergency      = "emergency"
	CategoryAdministrative = "administrative"
)

// Category describes one template category for the authoring UI.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Count       int64  `json:"count"`
}

var categories = []Category{
	{ID: CategoryAppointment, Name: "Appointments", Description: "Confirmations, reminders and rescheduling notices"},
	{ID: CategoryTreatment, Name: "Treatment Care", Description: "Pre and post treatment instructions"},
	{ID: CategoryFollowup, Name: "Follow-ups", Description: "Check-ins after a visit"},
	{ID: CategoryMarketing, Name: "Marketing", Description: "Promotions and announcements, opt-out required"},
	{ID: CategoryFinancial, Name: "Financial", Description: "Balances, payments and receipts"},
	{ID: CategoryMembership, Name: "Membership", Description: "Packages, credits and renewals"},
	{ID: CategoryReview, Name: "Reviews", Description: "Review and feedback requests"},
	{ID: CategoryEmergency, Name: "Emergency", Description: "Closures and urgent notices"},
	{ID: CategoryAdministrative, Name: "Administrative", Description: "Forms, policies and account notices"},
}

// optOutKeywords must appear in capitals in every marketing template.
var optOutKeywords = []string{"STOP", "UNSUBSCRIBE", "END", "CANCEL", "QUIT", "STOPALL"}
