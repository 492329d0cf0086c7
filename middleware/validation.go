package middleware

import (
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern = regexp.MustCompile(`^[0-9+\-() ]{7,20}$`)
)

// dateLayouts accepted for event date form fields.
var dateLayouts = []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04", "2006-01-02 15:04:05"}

// ParseDate parses a date form value in any accepted layout.
func ParseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ValidateEvent checks required event fields on the multipart form
// before the controller runs. Applied on create only; updates are
// partial.
func ValidateEvent() gin.HandlerFunc {
	return func(c *gin.Context) {
		var errors []string

		if c.PostForm("title") == "" {
			errors = append(errors, "Title is required")
		}
		if c.PostForm("description") == "" {
			errors = append(errors, "Description is required")
		}
		if c.PostForm("location") == "" {
			errors = append(errors, "Location is required")
		}
		if c.PostForm("organizer") == "" {
			errors = append(errors, "Organizer is required")
		}

		eventDate := c.PostForm("eventDate")
		if eventDate == "" {
			errors = append(errors, "Event date is required")
		} else if _, ok := ParseDate(eventDate); !ok {
			errors = append(errors, "Event date must be a valid date")
		}
		if endDate := c.PostForm("endDate"); endDate != "" {
			if _, ok := ParseDate(endDate); !ok {
				errors = append(errors, "End date must be a valid date")
			}
		}

		if len(errors) > 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errors": errors})
			return
		}
		c.Next()
	}
}

// ValidateNews checks required news fields on the multipart form.
func ValidateNews() gin.HandlerFunc {
	return func(c *gin.Context) {
		var errors []string

		if c.PostForm("title") == "" {
			errors = append(errors, "Title is required")
		}
		if c.PostForm("content") == "" {
			errors = append(errors, "Content is required")
		}
		if c.PostForm("author") == "" {
			errors = append(errors, "Author is required")
		}
		if c.PostForm("category") == "" {
			errors = append(errors, "Category is required")
		}

		if len(errors) > 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errors": errors})
			return
		}
		c.Next()
	}
}

// ValidateRegistration checks participant registration bodies.
type RegistrationInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	AdditionalInfo string `json:"additionalInfo"`
}

func CheckRegistration(input RegistrationInput) []string {
	var errors []string

	if input.Name == "" {
		errors = append(errors, "Name is required")
	}
	if input.Email == "" {
		errors = append(errors, "Email is required")
	} else if !emailPattern.MatchString(input.Email) {
		errors = append(errors, "Email must be in valid format")
	}
	if input.Phone == "" {
		errors = append(errors, "Phone number is required")
	} else if !phonePattern.MatchString(input.Phone) {
		errors = append(errors, "Phone number must be valid")
	}

	return errors
}

// FieldErrors converts binding-tag validation failures into the
// field-level message list the API exposes on 400 responses.
func FieldErrors(err error) []string {
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"Invalid request body"}
	}

	var errors []string
	for _, ve := range vErrs {
		switch ve.Tag() {
		case "required":
			errors = append(errors, ve.Field()+" is required")
		case "email":
			errors = append(errors, ve.Field()+" must be in valid format")
		case "min":
			errors = append(errors, ve.Field()+" must be at least "+ve.Param()+" characters")
		case "oneof":
			errors = append(errors, ve.Field()+" must be one of: "+ve.Param())
		default:
			errors = append(errors, ve.Field()+" is invalid")
		}
	}
	return errors
}
