package telegram

import (
	"fmt"
	"strconv"
	"strings"
)

// Main-menu reply keyboard labels. The router decodes them into MenuAction
// once, at the boundary.
const (
	MenuProfile  = "👤 Profile"
	MenuSearch   = "🔍 Search"
	MenuDaily    = "🎁 Daily Bonus"
	MenuBoost    = "🚀 Boost"
	MenuViewers  = "👀 Viewers"
	MenuGift     = "💝 Gift Coins"
	MenuMatches  = "❤️ Matches"
	MenuReferral = "🔗 Invite Friends"
	MenuAdmin    = "🛠 Admin Console"
)

// MenuAction is the closed set of top-level menu selections.
type MenuAction int

const (
	MenuActionProfile MenuAction = iota + 1
	MenuActionSearch
	MenuActionDaily
	MenuActionBoost
	MenuActionViewers
	MenuActionGift
	MenuActionMatches
	MenuActionReferral
	MenuActionAdmin
)

// ParseMenu maps a visible button label to its action.
func ParseMenu(label string) (MenuAction, bool) {
	switch label {
	case MenuProfile:
		return MenuActionProfile, true
	case MenuSearch:
		return MenuActionSearch, true
	case MenuDaily:
		return MenuActionDaily, true
	case MenuBoost:
		return MenuActionBoost, true
	case MenuViewers:
		return MenuActionViewers, true
	case MenuGift:
		return MenuActionGift, true
	case MenuMatches:
		return MenuActionMatches, true
	case MenuReferral:
		return MenuActionReferral, true
	case MenuAdmin:
		return MenuActionAdmin, true
	}
	return 0, false
}

// ActionKind tags a decoded callback action.
type ActionKind int

const (
	ActionUnknown   ActionKind = iota
	ActionGender               // Value: male/female/other
	ActionAgeBucket            // Page: bucket index
	ActionLike                 // ID: target user
	ActionNavNext
	ActionNavPrev
	ActionReport    // ID: target user
	ActionEditField // Value: field name
	ActionPhotosDone
	ActionGiftConfirm
	ActionGiftCancel
	ActionMatchesPage // Page
	ActionAdminStats
	ActionAdminUsersPage // Page
	ActionAdminReports
	ActionAdminResolve // Value: report id
	ActionAdminLookup
	ActionAdminBan
	ActionAdminUnban
	ActionAdminGrant
	ActionAdminBroadcast
	ActionAdminPromote
	ActionAdminDemote
)

// Action is a callback payload decoded exactly once at the boundary.
// Unknown payloads decode to ActionUnknown and are acked and dropped.
type Action struct {
	Kind  ActionKind
	Value string
	ID    int64
	Page  int
}

// Callback-data builders, the inverse of ParseAction.
func genderData(g string) string        { return "gender_" + g }
func ageBucketData(i int) string        { return fmt.Sprintf("agebucket_%d", i) }
func likeData(id int64) string          { return fmt.Sprintf("like_%d", id) }
func reportData(id int64) string        { return fmt.Sprintf("report_%d", id) }
func editFieldData(field string) string { return "edit_" + field }
func matchesPageData(p int) string      { return fmt.Sprintf("matches_%d", p) }
func adminUsersData(p int) string       { return fmt.Sprintf("adm_users_%d", p) }
func adminResolveData(id string) string { return "adm_resolve_" + id }

// ParseAction decodes a raw callback payload.
func ParseAction(data string) Action {
	switch data {
	case "nav_next":
		return Action{Kind: ActionNavNext}
	case "nav_prev":
		return Action{Kind: ActionNavPrev}
	case "photos_done":
		return Action{Kind: ActionPhotosDone}
	case "gift_confirm":
		return Action{Kind: ActionGiftConfirm}
	case "gift_cancel":
		return Action{Kind: ActionGiftCancel}
	case "adm_stats":
		return Action{Kind: ActionAdminStats}
	case "adm_reports":
		return Action{Kind: ActionAdminReports}
	case "adm_lookup":
		return Action{Kind: ActionAdminLookup}
	case "adm_ban":
		return Action{Kind: ActionAdminBan}
	case "adm_unban":
		return Action{Kind: ActionAdminUnban}
	case "adm_grant":
		return Action{Kind: ActionAdminGrant}
	case "adm_broadcast":
		return Action{Kind: ActionAdminBroadcast}
	case "adm_promote":
		return Action{Kind: ActionAdminPromote}
	case "adm_demote":
		return Action{Kind: ActionAdminDemote}
	}

	switch {
	case strings.HasPrefix(data, "gender_"):
		return Action{Kind: ActionGender, Value: strings.TrimPrefix(data, "gender_")}
	case strings.HasPrefix(data, "agebucket_"):
		if i, err := strconv.Atoi(strings.TrimPrefix(data, "agebucket_")); err == nil {
			return Action{Kind: ActionAgeBucket, Page: i}
		}
	case strings.HasPrefix(data, "like_"):
		if id, err := strconv.ParseInt(strings.TrimPrefix(data, "like_"), 10, 64); err == nil {
			return Action{Kind: ActionLike, ID: id}
		}
	case strings.HasPrefix(data, "report_"):
		if id, err := strconv.ParseInt(strings.TrimPrefix(data, "report_"), 10, 64); err == nil {
			return Action{Kind: ActionReport, ID: id}
		}
	case strings.HasPrefix(data, "edit_"):
		return Action{Kind: ActionEditField, Value: strings.TrimPrefix(data, "edit_")}
	case strings.HasPrefix(data, "matches_"):
		if p, err := strconv.Atoi(strings.TrimPrefix(data, "matches_")); err == nil {
			return Action{Kind: ActionMatchesPage, Page: p}
		}
	case strings.HasPrefix(data, "adm_resolve_"):
		return Action{Kind: ActionAdminResolve, Value: strings.TrimPrefix(data, "adm_resolve_")}
	case strings.HasPrefix(data, "adm_users_"):
		if p, err := strconv.Atoi(strings.TrimPrefix(data, "adm_users_")); err == nil {
			return Action{Kind: ActionAdminUsersPage, Page: p}
		}
	}
	return Action{Kind: ActionUnknown}
}
