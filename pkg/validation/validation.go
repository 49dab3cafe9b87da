package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"asset-management-api/internal/model"
)

// Field length limits
const (
	MaxTextFieldLength  = 255
	MaxNotesLength      = 2000
	MaxIdentifierLength = 32
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateRequired checks if a string field is not empty
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateLength checks a string against a maximum length.
func ValidateLength(fieldName, value string, max int) error {
	if len(value) > max {
		return fmt.Errorf("%s cannot exceed %d characters", fieldName, max)
	}
	return nil
}

// ValidateIdentifier validates a business key such as an employee id.
func ValidateIdentifier(fieldName, id string) error {
	if err := ValidateRequired(fieldName, id); err != nil {
		return err
	}
	if len(id) > MaxIdentifierLength {
		return fmt.Errorf("%s cannot exceed %d characters", fieldName, MaxIdentifierLength)
	}
	if !identifierPattern.MatchString(id) {
		return fmt.Errorf("%s can only contain letters, digits, dashes and underscores", fieldName)
	}
	return nil
}

// ValidateEmail validates an optional email address.
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address: %s", email)
	}
	return nil
}

// ValidateAssetInput validates all required fields for creating a new asset
func ValidateAssetInput(asset *model.Asset) []string {
	var errors []string

	if !asset.Type.IsValid() {
		errors = append(errors, fmt.Sprintf("invalid asset type: %q", asset.Type))
	}
	if err := ValidateRequired("brand", asset.Brand); err != nil {
		errors = append(errors, err.Error())
	} else if err := ValidateLength("brand", asset.Brand, MaxTextFieldLength); err != nil {
		errors = append(errors, err.Error())
	}
	if err := ValidateRequired("model", asset.Model); err != nil {
		errors = append(errors, err.Error())
	} else if err := ValidateLength("model", asset.Model, MaxTextFieldLength); err != nil {
		errors = append(errors, err.Error())
	}
	if err := ValidateLength("serial number", asset.SerialNumber, MaxTextFieldLength); err != nil {
		errors = append(errors, err.Error())
	}
	if err := ValidateLength("notes", asset.Notes, MaxNotesLength); err != nil {
		errors = append(errors, err.Error())
	}
	errors = append(errors, validatePurchaseMetadata(asset.PurchasePrice, asset.LifespanMonths)...)

	if asset.PurchaseDate != nil && asset.WarrantyExpiry != nil && asset.WarrantyExpiry.Before(*asset.PurchaseDate) {
		errors = append(errors, "warranty expiry cannot be before purchase date")
	}

	return errors
}

// ValidateAssetPatch validates a direct field edit. Status and assignment
// are changed through lifecycle operations only.
func ValidateAssetPatch(patch *model.AssetPatch) []string {
	var errors []string

	if patch.Status != nil || patch.AssignedEmployeeID != nil || patch.ClearAssignment {
		errors = append(errors, "status and assignment cannot be edited directly")
	}
	if patch.Brand != nil {
		if err := ValidateRequired("brand", *patch.Brand); err != nil {
			errors = append(errors, err.Error())
		}
	}
	if patch.Model != nil {
		if err := ValidateRequired("model", *patch.Model); err != nil {
			errors = append(errors, err.Error())
		}
	}
	if patch.Notes != nil {
		if err := ValidateLength("notes", *patch.Notes, MaxNotesLength); err != nil {
			errors = append(errors, err.Error())
		}
	}
	errors = append(errors, validatePurchaseMetadata(patch.PurchasePrice, patch.LifespanMonths)...)

	return errors
}

func validatePurchaseMetadata(price *float64, lifespan *int) []string {
	var errors []string
	if price != nil && *price < 0 {
		errors = append(errors, "purchase price cannot be negative")
	}
	if lifespan != nil && *lifespan <= 0 {
		errors = append(errors, "lifespan must be a positive number of months")
	}
	return errors
}

// ValidateEmployeeInput validates all required fields for creating an employee
func ValidateEmployeeInput(employee *model.Employee) []string {
	var errors []string

	if err := ValidateIdentifier("employee id", employee.ID); err != nil {
		errors = append(errors, err.Error())
	}
	if err := ValidateRequired("first name", employee.FirstName); err != nil {
		errors = append(errors, err.Error())
	}
	if err := ValidateLength("department", employee.Department, MaxTextFieldLength); err != nil {
		errors = append(errors, err.Error())
	}
	if err := ValidateEmail(employee.Email); err != nil {
		errors = append(errors, err.Error())
	}
	if employee.Status == "" {
		employee.Status = model.EmployeeActive
	} else if !employee.Status.IsValid() {
		errors = append(errors, fmt.Sprintf("invalid employee status: %q", employee.Status))
	}

	return errors
}

// ValidateStatusName validates the name of a custom asset status.
func ValidateStatusName(name string) error {
	if err := ValidateRequired("status name", name); err != nil {
		return err
	}
	if err := ValidateLength("status name", name, 50); err != nil {
		return err
	}
	if model.AssetStatus(name).IsBuiltin() {
		return fmt.Errorf("%q is a built-in status", name)
	}
	return nil
}
