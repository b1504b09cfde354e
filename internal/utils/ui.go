package utils

import (
	"github.com/go-telegram/bot/models"

	"github.com/AndriyMV/task-manager-bot/internal/dialog"
)

// BuildInlineKeyboard lays dialogue buttons out in rows of up to three.
func BuildInlineKeyboard(buttons []dialog.Button) models.InlineKeyboardMarkup {
	pad := func(s string) string { return " " + s + " " }
	rows := make([][]models.InlineKeyboardButton, 0)
	row := make([]models.InlineKeyboardButton, 0, 3)
	for i, button := range buttons {
		if i > 0 && i%3 == 0 {
			rows = append(rows, row)
			row = make([]models.InlineKeyboardButton, 0, 3)
		}
		row = append(row, models.InlineKeyboardButton{
			Text:         pad(button.Label),
			CallbackData: button.Data,
		})
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	return models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}
