package personalize

import (
	"net/http"

	"cms-site/pkg/models"
)

type ExperienceStatus struct {
	ShortUID string  `json:"shortUid"`
	Variant  *string `json:"variant"`
	Status   string  `json:"status"`
}

// DebugReport describes the personalization identity a request carries.
type DebugReport struct {
	UserID         *string            `json:"userId"`
	Manifest       *models.Manifest   `json:"manifest"`
	Experiences    []ExperienceStatus `json:"experiences"`
	VariantParam   *string            `json:"variantParam"`
	VariantAliases []string           `json:"variantAliases"`
	Source         string             `json:"source"`
}

// BuildDebugReport inspects cookies, the edge debug header and the query
// parameter. It never fails; unreadable state is reported as absent.
func BuildDebugReport(r *http.Request, precedence Precedence) DebugReport {
	report := DebugReport{Experiences: []ExperienceStatus{}, VariantAliases: []string{}}

	if c, err := r.Cookie(UserUIDCookie); err == nil && c.Value != "" {
		v := c.Value
		report.UserID = &v
	}
	if m, err := ManifestFromRequest(r); err == nil && m != nil {
		report.Manifest = m
		for _, exp := range m.Experiences {
			status := "No variant assigned (needs audience match)"
			if exp.ActiveVariantShortUID != nil && *exp.ActiveVariantShortUID != "" {
				status = "Active variant: " + *exp.ActiveVariantShortUID
			}
			report.Experiences = append(report.Experiences, ExperienceStatus{
				ShortUID: exp.ShortUID,
				Variant:  exp.ActiveVariantShortUID,
				Status:   status,
			})
		}
	}

	param := r.URL.Query().Get(VariantQueryParam)
	if param == "" {
		param = r.Header.Get(HeaderVariant)
	}
	if param != "" {
		report.VariantParam = &param
	}

	res := precedence.Resolve(r)
	report.Source = res.Source
	report.VariantAliases = res.Aliases
	if res.Source == SourceNone && param != "" {
		report.VariantAliases = ParamToAliases(param)
		report.Source = "header"
	}
	return report
}
