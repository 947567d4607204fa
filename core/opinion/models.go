package opinion

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/madrasa/core"
)

// Opinion is a public, append-only testimonial.
type Opinion struct {
	ID          string    `json:"id"`
	StudentName string    `json:"student_name"`
	Subject     string    `json:"subject"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

type NewOpinion struct {
	Subject string `json:"subject" validate:"required"`
	Text    string `json:"text" validate:"required"`
}

func (no *NewOpinion) Validate(validate *validator.Validate) error {
	no.Subject = core.CleanString(no.Subject)
	no.Text = core.CleanString(no.Text)
	return validate.Struct(no)
}
