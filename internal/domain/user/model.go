package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/medtrack/medtrack/internal/platform/timezone"
)

// User maps to the users table.
type User struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	Name           string    `db:"name" json:"name"`
	CountryCode    *string   `db:"country_code" json:"country_code,omitempty"`
	ZoneID         *string   `db:"zone_id" json:"zone_id,omitempty"`
	TelegramChatID *int64    `db:"telegram_chat_id" json:"telegram_chat_id,omitempty"`
	PushoverKey    *string   `db:"pushover_key" json:"pushover_key,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Location resolves the user's time zone. An explicit zone id wins, then the
// country mapping, then UTC.
func (u *User) Location(r *timezone.Resolver) *time.Location {
	if u.ZoneID != nil {
		if loc, ok := r.Load(*u.ZoneID); ok {
			return loc
		}
	}
	if u.CountryCode != nil {
		loc, _ := r.ForCountry(*u.CountryCode)
		return loc
	}
	return time.UTC
}
