package transport

import (
	"fmt"
	"strings"

	"github.com/asaskevich/govalidator"
)

func validate(v any) error {
	_, err := govalidator.ValidateStruct(v)
	return err
}

func (r UserCreate) Validate() error   { return validate(r) }
func (r LoginRequest) Validate() error { return validate(r) }

// Validate requires every field to be present. Negative price or stock is
// accepted.
func (r ProductCreate) Validate() error {
	var missing []string
	if r.Name == nil {
		missing = append(missing, "name")
	}
	if r.Description == nil {
		missing = append(missing, "description")
	}
	if r.Price == nil {
		missing = append(missing, "price")
	}
	if r.ImageURL == nil {
		missing = append(missing, "image_url")
	}
	if r.Stock == nil {
		missing = append(missing, "stock")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
