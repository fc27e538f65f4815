package grants

import "strings"

// Grants.gov applicant-type codes. Unknown codes pass through unchanged.
var eligibilityCodes = map[string]string{
	"00": "State governments",
	"01": "County governments",
	"02": "City or township governments",
	"04": "Special district governments",
	"05": "Independent school districts",
	"06": "Public and State controlled institutions of higher education",
	"07": "Native American tribal governments (Federally recognized)",
	"08": "Public housing authorities/Indian housing authorities",
	"11": "Native American tribal organizations (other than Federally recognized)",
	"12": "Nonprofits having a 501(c)(3) status with the IRS, other than institutions of higher education",
	"13": "Nonprofits that do not have a 501(c)(3) status with the IRS, other than institutions of higher education",
	"20": "Private institutions of higher education",
	"21": "Individuals",
	"22": "For profit organizations other than small businesses",
	"23": "Small businesses",
	"25": "Others",
}

// DecodeEligibility turns a pipe-separated applicant-type code list into a
// readable comma-separated description.
func DecodeEligibility(code string) string {
	if code == "" {
		return "Not specified"
	}

	parts := strings.Split(code, "|")
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if label, ok := eligibilityCodes[p]; ok {
			labels = append(labels, label)
		} else {
			labels = append(labels, p)
		}
	}
	return strings.Join(labels, ", ")
}
