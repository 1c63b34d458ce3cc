// Package extract turns raw chat text into structured lead fields using an
// instruction-driven model call with a function-shaped response.
package extract

import "strings"

// ServiceType is the enumerated service category a lead can request.
type ServiceType string

const (
	ServicePlumbing        ServiceType = "plumbing"
	ServiceElectrician     ServiceType = "electrician"
	ServiceCarpentry       ServiceType = "carpentry"
	ServicePainting        ServiceType = "painting"
	ServiceCleaning        ServiceType = "cleaning"
	ServicePestControl     ServiceType = "pest_control"
	ServiceApplianceRepair ServiceType = "appliance_repair"
	ServiceACService       ServiceType = "ac_service"
	ServicePackersMovers   ServiceType = "packers_movers"
	ServiceRentAgreement   ServiceType = "rent_agreement"
	ServiceOther           ServiceType = "other"
)

var serviceTypes = map[ServiceType]struct{}{
	ServicePlumbing:        {},
	ServiceElectrician:     {},
	ServiceCarpentry:       {},
	ServicePainting:        {},
	ServiceCleaning:        {},
	ServicePestControl:     {},
	ServiceApplianceRepair: {},
	ServiceACService:       {},
	ServicePackersMovers:   {},
	ServiceRentAgreement:   {},
	ServiceOther:           {},
}

// ServiceTypeValues lists every accepted category, used to constrain the
// model's structured output.
func ServiceTypeValues() []string {
	return []string{
		string(ServicePlumbing), string(ServiceElectrician), string(ServiceCarpentry),
		string(ServicePainting), string(ServiceCleaning), string(ServicePestControl),
		string(ServiceApplianceRepair), string(ServiceACService), string(ServicePackersMovers),
		string(ServiceRentAgreement), string(ServiceOther),
	}
}

// Valid reports whether s is one of the enumerated categories.
func (s ServiceType) Valid() bool {
	_, ok := serviceTypes[s]
	return ok
}

// Fields is the structured output of a single extraction call. Empty strings
// mean the field was absent from the message. LocationAddress carries only
// the physical address; timing and urgency phrases always land in
// SpecialInstructions.
type Fields struct {
	CustomerName        string      `json:"customer_name"`
	CustomerPhone       string      `json:"customer_phone"`
	LocationAddress     string      `json:"location_address"`
	ServiceType         ServiceType `json:"service_type"`
	SpecialInstructions string      `json:"special_instructions"`
}

// fieldsFromArgs maps a function-call argument object into Fields, trimming
// whitespace and coercing unknown categories to "other".
func fieldsFromArgs(args map[string]any) Fields {
	f := Fields{
		CustomerName:        argString(args, "customer_name"),
		CustomerPhone:       argString(args, "customer_phone"),
		LocationAddress:     argString(args, "location_address"),
		SpecialInstructions: argString(args, "special_instructions"),
	}
	if raw := argString(args, "service_type"); raw != "" {
		st := ServiceType(strings.ToLower(raw))
		if !st.Valid() {
			st = ServiceOther
		}
		f.ServiceType = st
	}
	return f
}

func argString(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return ""
	}
	return s
}
