package forms

import (
	"testing"

	"buildcare/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Inquiry(t *testing.T) {
	v := NewValidator(8)

	err := v.Validate(model.LeadKindInquiry, map[string]interface{}{
		"name":  "Ravi Kumar",
		"phone": "+91 98422 11100",
	})
	require.NoError(t, err)

	// Missing required phone.
	err = v.Validate(model.LeadKindInquiry, map[string]interface{}{
		"name": "Ravi Kumar",
	})
	assert.Error(t, err)

	// Phone with letters.
	err = v.Validate(model.LeadKindInquiry, map[string]interface{}{
		"name":  "Ravi Kumar",
		"phone": "call me maybe",
	})
	assert.Error(t, err)

	// Unknown extra field.
	err = v.Validate(model.LeadKindInquiry, map[string]interface{}{
		"name":    "Ravi Kumar",
		"phone":   "9842211100",
		"captcha": "x",
	})
	assert.Error(t, err)
}

func TestValidator_Contact(t *testing.T) {
	v := NewValidator(8)

	err := v.Validate(model.LeadKindContact, map[string]interface{}{
		"name":    "Priya",
		"email":   "priya@example.com",
		"message": "Please call me about terrace waterproofing.",
	})
	require.NoError(t, err)

	// Empty message fails minLength.
	err = v.Validate(model.LeadKindContact, map[string]interface{}{
		"name":    "Priya",
		"email":   "priya@example.com",
		"message": "",
	})
	assert.Error(t, err)
}

func TestValidator_ExitIntent(t *testing.T) {
	v := NewValidator(8)

	err := v.Validate(model.LeadKindExitIntent, map[string]interface{}{
		"email":      "lead@example.com",
		"offer":      "pre-monsoon discount",
		"sourcePage": "/services/terrace-waterproofing",
	})
	require.NoError(t, err)

	err = v.Validate(model.LeadKindExitIntent, map[string]interface{}{
		"offer": "pre-monsoon discount",
	})
	assert.Error(t, err)
}

func TestValidator_UnknownKind(t *testing.T) {
	v := NewValidator(8)
	err := v.Validate(model.LeadKind("newsletter"), map[string]interface{}{})
	assert.Error(t, err)
}

func TestValidator_CacheReuse(t *testing.T) {
	v := NewValidator(8)

	for i := 0; i < 3; i++ {
		err := v.Validate(model.LeadKindInquiry, map[string]interface{}{
			"name":  "Repeat",
			"phone": "9842211100",
		})
		require.NoError(t, err)
	}
}
