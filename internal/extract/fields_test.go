package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldsFromArgs(t *testing.T) {
	args := map[string]any{
		"customer_name":        " Ramesh Sharma ",
		"customer_phone":       "9876543210",
		"location_address":     "Flat 101, Shanti Nagar, Thane",
		"service_type":         "rent_agreement",
		"special_instructions": "Urgent, need by evening",
	}

	f := fieldsFromArgs(args)
	assert.Equal(t, "Ramesh Sharma", f.CustomerName)
	assert.Equal(t, "9876543210", f.CustomerPhone)
	assert.Equal(t, "Flat 101, Shanti Nagar, Thane", f.LocationAddress)
	assert.Equal(t, ServiceRentAgreement, f.ServiceType)
	assert.Equal(t, "Urgent, need by evening", f.SpecialInstructions)
}

func TestFieldsFromArgsUnknownCategory(t *testing.T) {
	f := fieldsFromArgs(map[string]any{"service_type": "astrology"})
	assert.Equal(t, ServiceOther, f.ServiceType)
}

func TestFieldsFromArgsUppercaseCategory(t *testing.T) {
	f := fieldsFromArgs(map[string]any{"service_type": "Plumbing"})
	assert.Equal(t, ServicePlumbing, f.ServiceType)
}

func TestFieldsFromArgsNullStrings(t *testing.T) {
	f := fieldsFromArgs(map[string]any{
		"customer_name":    "null",
		"customer_phone":   "None",
		"location_address": "",
	})
	assert.Empty(t, f.CustomerName)
	assert.Empty(t, f.CustomerPhone)
	assert.Empty(t, f.LocationAddress)
	assert.Empty(t, f.ServiceType)
}

func TestFieldsFromArgsNonStringValues(t *testing.T) {
	f := fieldsFromArgs(map[string]any{
		"customer_phone": 9876543210,
		"service_type":   nil,
	})
	assert.Empty(t, f.CustomerPhone)
	assert.Empty(t, f.ServiceType)
}

func TestServiceTypeValid(t *testing.T) {
	assert.True(t, ServicePlumbing.Valid())
	assert.True(t, ServiceOther.Valid())
	assert.False(t, ServiceType("astrology").Valid())
	assert.False(t, ServiceType("").Valid())
}
