package util

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

var initialsTemplate = template.Must(template.ParseFS(TemplateFS, "template/initials.svg"))

type initialsAvatar struct {
	Size     int
	Color    string
	Initials string
}

// InitialsAvatarUrl is the default avatar of a user without an uploaded image.
func InitialsAvatarUrl(publicUrl string, name string) string {
	return fmt.Sprintf("%s/api/avatars/initials?name=%s", strings.TrimRight(publicUrl, "/"), url.QueryEscape(name))
}

// RenderInitialsAvatar draws the initials of name on a background colour
// derived from the name, so a name always gets the same colour.
func RenderInitialsAvatar(name string, size int) ([]byte, error) {
	var svg bytes.Buffer
	err := initialsTemplate.Execute(&svg, initialsAvatar{
		Size:     size,
		Color:    HashSHA256(strings.ToLower(strings.TrimSpace(name)))[:6],
		Initials: GenerateInitials(name),
	})
	if err != nil {
		return nil, err
	}

	return svg.Bytes(), nil
}
