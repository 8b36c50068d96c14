package telegram

import (
	"fmt"

	"github.com/SM-TRIBE/bot/internal/discovery"
	"github.com/SM-TRIBE/bot/internal/models"
	"github.com/SM-TRIBE/bot/internal/profile"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// mainMenu is the persistent reply keyboard. Admins and sub-admins get the
// console button appended.
func mainMenu(role string) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuProfile),
			tgbotapi.NewKeyboardButton(MenuSearch),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuDaily),
			tgbotapi.NewKeyboardButton(MenuBoost),
			tgbotapi.NewKeyboardButton(MenuViewers),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuMatches),
			tgbotapi.NewKeyboardButton(MenuGift),
			tgbotapi.NewKeyboardButton(MenuReferral),
		),
	}
	if role == models.RoleAdmin || role == models.RoleSubAdmin {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(MenuAdmin)))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

// genderKeyboard is the fixed three-way gender choice.
func genderKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Male", genderData(models.GenderMale)),
			tgbotapi.NewInlineKeyboardButtonData("Female", genderData(models.GenderFemale)),
			tgbotapi.NewInlineKeyboardButtonData("Other", genderData(models.GenderOther)),
		),
	)
}

// ageBucketKeyboard offers the fixed set of age ranges.
func ageBucketKeyboard() tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(discovery.AgeBuckets))
	for i, b := range discovery.AgeBuckets {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Label, ageBucketData(i)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
}

// photosDoneKeyboard closes the photo-collection step.
func photosDoneKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Done", "photos_done"),
		),
	)
}

// candidateKeyboard is attached to every discovery card.
func candidateKeyboard(targetID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❤️ Like", likeData(targetID)),
			tgbotapi.NewInlineKeyboardButtonData("🚩 Report", reportData(targetID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️", "nav_prev"),
			tgbotapi.NewInlineKeyboardButtonData("➡️", "nav_next"),
		),
	)
}

// editProfileKeyboard lists the single-field edit entry points.
func editProfileKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Name", editFieldData(profile.FieldName)),
			tgbotapi.NewInlineKeyboardButtonData("Age", editFieldData(profile.FieldAge)),
			tgbotapi.NewInlineKeyboardButtonData("Gender", editFieldData(profile.FieldGender)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("City", editFieldData(profile.FieldCity)),
			tgbotapi.NewInlineKeyboardButtonData("Interests", editFieldData(profile.FieldInterests)),
			tgbotapi.NewInlineKeyboardButtonData("Limits", editFieldData(profile.FieldLimits)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("About", editFieldData(profile.FieldBio)),
			tgbotapi.NewInlineKeyboardButtonData("Photos", editFieldData("photos")),
		),
	)
}

// giftConfirmKeyboard asks for the explicit transfer confirmation.
func giftConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", "gift_confirm"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "gift_cancel"),
		),
	)
}

// pagerKeyboard builds prev/next buttons around a page number.
func pagerKeyboard(page, pages int, data func(int) string) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	if page > 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️", data(page-1)))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", page+1, pages), data(page)))
	if page+1 < pages {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("➡️", data(page+1)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
}

// adminConsoleKeyboard is the full console; sub-admins get the reduced one.
func adminConsoleKeyboard(role string) tgbotapi.InlineKeyboardMarkup {
	lookupRow := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("👥 Users", adminUsersData(0)),
		tgbotapi.NewInlineKeyboardButtonData("🔎 Lookup", "adm_lookup"),
	)
	banRow := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔨 Ban", "adm_ban"),
		tgbotapi.NewInlineKeyboardButtonData("🕊 Unban", "adm_unban"),
	)
	if role == models.RoleSubAdmin {
		return tgbotapi.NewInlineKeyboardMarkup(lookupRow, banRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Stats", "adm_stats"),
			tgbotapi.NewInlineKeyboardButtonData("🚩 Reports", "adm_reports"),
		),
		lookupRow,
		banRow,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Grant Coins", "adm_grant"),
			tgbotapi.NewInlineKeyboardButtonData("📢 Broadcast", "adm_broadcast"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬆️ Promote", "adm_promote"),
			tgbotapi.NewInlineKeyboardButtonData("⬇️ Demote", "adm_demote"),
		),
	)
}
