package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMenu(t *testing.T) {
	// Arrange
	cases := []struct {
		label string
		want  MenuAction
		ok    bool
	}{
		{MenuProfile, MenuActionProfile, true},
		{MenuSearch, MenuActionSearch, true},
		{MenuDaily, MenuActionDaily, true},
		{MenuBoost, MenuActionBoost, true},
		{MenuViewers, MenuActionViewers, true},
		{MenuGift, MenuActionGift, true},
		{MenuMatches, MenuActionMatches, true},
		{MenuReferral, MenuActionReferral, true},
		{MenuAdmin, MenuActionAdmin, true},
		{"hello there", 0, false},
		{"", 0, false},
	}

	for _, c := range cases {
		// Act
		got, ok := ParseMenu(c.label)

		// Assert
		assert.Equal(t, c.ok, ok, c.label)
		assert.Equal(t, c.want, got, c.label)
	}
}

func TestParseAction(t *testing.T) {
	// Arrange
	cases := []struct {
		data string
		want Action
	}{
		{genderData("male"), Action{Kind: ActionGender, Value: "male"}},
		{ageBucketData(2), Action{Kind: ActionAgeBucket, Page: 2}},
		{likeData(42), Action{Kind: ActionLike, ID: 42}},
		{reportData(7), Action{Kind: ActionReport, ID: 7}},
		{editFieldData("city"), Action{Kind: ActionEditField, Value: "city"}},
		{matchesPageData(3), Action{Kind: ActionMatchesPage, Page: 3}},
		{adminUsersData(1), Action{Kind: ActionAdminUsersPage, Page: 1}},
		{adminResolveData("abc-123"), Action{Kind: ActionAdminResolve, Value: "abc-123"}},
		{"nav_next", Action{Kind: ActionNavNext}},
		{"nav_prev", Action{Kind: ActionNavPrev}},
		{"photos_done", Action{Kind: ActionPhotosDone}},
		{"gift_confirm", Action{Kind: ActionGiftConfirm}},
		{"gift_cancel", Action{Kind: ActionGiftCancel}},
		{"adm_stats", Action{Kind: ActionAdminStats}},
		{"adm_reports", Action{Kind: ActionAdminReports}},
		{"adm_lookup", Action{Kind: ActionAdminLookup}},
		{"adm_ban", Action{Kind: ActionAdminBan}},
		{"adm_unban", Action{Kind: ActionAdminUnban}},
		{"adm_grant", Action{Kind: ActionAdminGrant}},
		{"adm_broadcast", Action{Kind: ActionAdminBroadcast}},
		{"adm_promote", Action{Kind: ActionAdminPromote}},
		{"adm_demote", Action{Kind: ActionAdminDemote}},
		{"like_notanumber", Action{Kind: ActionUnknown}},
		{"agebucket_x", Action{Kind: ActionUnknown}},
		{"something_else", Action{Kind: ActionUnknown}},
		{"", Action{Kind: ActionUnknown}},
	}

	for _, c := range cases {
		// Act
		got := ParseAction(c.data)

		// Assert
		assert.Equal(t, c.want, got, c.data)
	}
}
