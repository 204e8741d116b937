package models

// Manifest is the cookie-persisted record of the active variant per
// experience for a visitor.
type Manifest struct {
	ActiveVariants map[string]*string `json:"activeVariants,omitempty"`
	Experiences    []Experience       `json:"experiences"`
}

type Experience struct {
	ShortUID              string  `json:"shortUid"`
	ActiveVariantShortUID *string `json:"activeVariantShortUid"`
}

// Attributes is the visitor attribute set sent to the personalization
// backend. Keys must match the names configured in audience rules.
type Attributes map[string]string

const (
	AttrCountry         = "Country"
	AttrDeviceType      = "Device Type"
	AttrOperatingSystem = "Operating System"
)
