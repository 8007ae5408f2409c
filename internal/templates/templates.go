package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

// ReservationForm is the reservation form page.
var ReservationForm = template.Must(template.ParseFS(files, "reservation_form.html"))
