// Package profile creates, edits and renders user profiles.
package profile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SM-TRIBE/bot/internal/config"
	"github.com/SM-TRIBE/bot/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Editable field names, shared by the wizard and single-field edits.
const (
	FieldName      = "name"
	FieldAge       = "age"
	FieldGender    = "gender"
	FieldCity      = "city"
	FieldInterests = "interests"
	FieldLimits    = "limits"
	FieldBio       = "bio"
)

// Validation errors reported back to the user as corrective prompts.
var (
	ErrBadAge       = fmt.Errorf("age must be a number between %d and %d", config.MinAge, config.MaxAge)
	ErrBadGender    = errors.New("gender must be male, female or other")
	ErrEmptyValue   = errors.New("value must not be empty")
	ErrUnknownField = errors.New("unknown profile field")
)

var validate = validator.New()

// CreateShell creates a minimally-initialized user on first contact, with
// the signup grant and a fresh referral code. If refCode resolves to an
// existing, different user, the referral is attributed and the referee gets
// the signup bonus on top. No-op when the user already exists.
func CreateShell(doc *models.Document, userID int64, refCode string, now time.Time) bool {
	if _, ok := doc.User(userID); ok {
		return false
	}

	u := &models.User{
		ID:        userID,
		Coins:     config.SignupGrant,
		Interests: []string{},
		Limits:    []string{},
		Photos:    []string{},
		Likes:     []int64{},
		Matches:   []int64{},
		Viewers:   []models.Viewer{},
		RefCode:   NewRefCode(doc),
		CreatedAt: now,
	}
	if ref, ok := doc.UserByRefCode(refCode); ok && ref.ID != userID {
		u.ReferrerID = ref.ID
		u.Coins += config.ReferralSignupBonus
	}
	doc.PutUser(u)
	return true
}

// NewRefCode generates a referral code unique within the document.
func NewRefCode(doc *models.Document) string {
	for {
		code := strings.ToUpper(uuid.New().String()[:8])
		if _, taken := doc.UserByRefCode(code); !taken {
			return code
		}
	}
}

// ApplyField validates raw and sets the named field on u. On validation
// failure nothing is mutated.
func ApplyField(u *models.User, field, raw string) error {
	raw = strings.TrimSpace(raw)
	switch field {
	case FieldName:
		if raw == "" {
			return ErrEmptyValue
		}
		u.Name = raw
	case FieldAge:
		age, err := strconv.Atoi(raw)
		if err != nil || age < config.MinAge || age > config.MaxAge {
			return ErrBadAge
		}
		u.Age = age
	case FieldGender:
		switch raw {
		case models.GenderMale, models.GenderFemale, models.GenderOther:
			u.Gender = raw
		default:
			return ErrBadGender
		}
	case FieldCity:
		if raw == "" {
			return ErrEmptyValue
		}
		u.City = raw
	case FieldInterests:
		u.Interests = SplitList(raw)
	case FieldLimits:
		u.Limits = SplitList(raw)
	case FieldBio:
		u.Bio = raw
	default:
		return ErrUnknownField
	}
	return nil
}

// SplitList splits comma-separated free text, trimming items and dropping
// empties.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Validate checks a completed profile before it is persisted by the wizard.
func Validate(u *models.User) error {
	return validate.Struct(u)
}

// Render formats the profile card as Telegram Markdown. extended adds the
// coin balance and boost indicator; forModerator appends identity, ban
// state and referrer lineage.
func Render(u *models.User, extended, forModerator bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*%s*, %d\n", u.Name, u.Age)
	fmt.Fprintf(&b, "📍 %s\n", orUnset(u.City))
	fmt.Fprintf(&b, "Gender: %s\n", orUnset(u.Gender))
	fmt.Fprintf(&b, "Interests: %s\n", orUnset(strings.Join(u.Interests, ", ")))
	if len(u.Limits) > 0 {
		fmt.Fprintf(&b, "Limits: %s\n", strings.Join(u.Limits, ", "))
	}
	if u.Bio != "" {
		fmt.Fprintf(&b, "About: %s\n", u.Bio)
	}

	if extended {
		fmt.Fprintf(&b, "\n💰 Coins: `%d`\n", u.Coins)
		if u.BoostActive(time.Now()) {
			fmt.Fprintf(&b, "🚀 Boost active until %s\n", u.BoostUntil.Format("Jan 2 15:04"))
		}
	}

	if forModerator {
		fmt.Fprintf(&b, "\nID: `%d`\n", u.ID)
		fmt.Fprintf(&b, "Banned: %v\n", u.Banned)
		if u.ReferrerID != 0 {
			fmt.Fprintf(&b, "Referred by: `%d`\n", u.ReferrerID)
		}
	}

	return b.String()
}

func orUnset(s string) string {
	if s == "" {
		return "not set"
	}
	return s
}
