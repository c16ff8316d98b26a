package business

// FAQ is one question/answer pair on a business profile.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Item is one product or service with a Naira price.
type Item struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
}

// Record is the denormalized business profile. The routing core treats it as
// read-only ground truth; writes happen in the external CRUD service.
type Record struct {
	BusinessID  string `json:"business_id"`
	LoginEmail  string `json:"email"`
	Name        string `json:"business_name"`
	Description string `json:"business_description"`
	Address     string `json:"business_address"`
	Phone       string `json:"business_phone"`
	PublicEmail string `json:"business_email_address"`
	Category    string `json:"business_category"`
	OpenHours   string `json:"business_open_hours,omitempty"`
	OpenDays    string `json:"business_open_days,omitempty"`
	Website     string `json:"business_website,omitempty"`
	ExtraInfo   string `json:"extra_information,omitempty"`
	FAQs        []FAQ  `json:"faqs,omitempty"`
	Items       []Item `json:"items,omitempty"`
}

// Filter narrows which records a sync pass considers.
type Filter struct {
	BusinessID string
	Category   string
	Limit      int
}
