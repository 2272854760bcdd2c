package domain

// UserProfile is the identity resolved by the session guard. Values are never
// mutated once a session is authenticated.
type UserProfile struct {
	ID              string `json:"id" yaml:"id" validate:"required"`
	Name            string `json:"name" yaml:"name" validate:"required"`
	Email           string `json:"email" yaml:"email" validate:"required"`
	Role            Role   `json:"role" yaml:"role" validate:"required,oneof=admin student professor"`
	ProfilePhotoURL string `json:"profile_photo_url,omitempty" yaml:"profile_photo_url,omitempty" validate:"omitempty,url"`
}

// PlaceholderName and PlaceholderEmail fill missing identity fields.
func PlaceholderName(r Role) string { return string(r) }

func PlaceholderEmail(r Role) string { return string(r) + "@domain" }
