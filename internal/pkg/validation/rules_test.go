package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/examportal/internal/app/models"
	"github.com/yigit/examportal/internal/app/models/dto"
)

func TestNew_AnalyzedEntityRules(t *testing.T) {
	v := New()

	valid := dto.AnalyzedEntity{ID: "a", Type: models.EntityCollege, Name: "College of Science"}
	assert.NoError(t, v.Struct(valid))

	// Confidence is advisory; percentages are accepted as given
	assert.NoError(t, v.Struct(dto.AnalyzedEntity{ID: "b", Type: models.EntityLevel, Name: "100 Level", Confidence: 85}))

	tests := []struct {
		name   string
		entity dto.AnalyzedEntity
		field  string
		tag    string
	}{
		{"missing id", dto.AnalyzedEntity{Type: models.EntityCollege, Name: "x"}, "id", "required"},
		{"unknown type", dto.AnalyzedEntity{ID: "a", Type: "Faculty", Name: "x"}, "type", TagEntityType},
		{"blank name", dto.AnalyzedEntity{ID: "a", Type: models.EntityLevel, Name: "   "}, "name", TagNotBlank},
		{"punctuation-only name", dto.AnalyzedEntity{ID: "a", Type: models.EntityCollege, Name: "???"}, "name", TagNotBlank},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.entity)
			require.Error(t, err)

			var fieldErrs validator.ValidationErrors
			require.True(t, errors.As(err, &fieldErrs))
			assert.Equal(t, tt.field, fieldErrs[0].Field())
			assert.Equal(t, tt.tag, fieldErrs[0].Tag())
		})
	}
}
