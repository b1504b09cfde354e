package messages

import (
	"fmt"
	"strings"
	"time"
)

const ParseModeHTML = "HTML"

// DateLayout is the wire format shown to users for deadlines.
const DateLayout = "02.01.2006 15:04"

func Escape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(strings.TrimSpace(s))
}

func Welcome(name string) string {
	if name == "" {
		name = "користувачу"
	}
	return fmt.Sprintf("Вітаю, %s! 👋\nВи зареєстровані в Task Manager Bot.", Escape(name))
}

func Help() string {
	return "Доступні команди:\n" +
		"/start - Запуск бота та реєстрація користувача.\n" +
		"/help - Вивід довідки по командам бота.\n" +
		"/tasks - Переглянути всі ваші задачі.\n" +
		"/create - Створити нову задачу.\n" +
		"/search - Пошук задач за назвою чи описом.\n" +
		"/filter - Фільтрація задач.\n" +
		"Або використовуйте кнопки для швидкого доступу:"
}

func ErrorDefault() string {
	return "🚫 Сталася помилка. Спробуйте ще раз."
}

func RegisterFirst() string {
	return "Спочатку зареєструйтесь через /start."
}

func TaskNotFound() string {
	return "Задачу не знайдено або у вас немає доступу до неї."
}

// Creation flow

func EnterTitle() string {
	return "Створення нової задачі\n\nВведіть назву задачі:"
}

func TitleInvalid() string {
	return "Назва не може бути порожньою чи довшою за 255 символів. Введіть назву задачі:"
}

func TitleSaved(title string) string {
	return fmt.Sprintf("Назва збережена: <b>%s</b>\n\nТепер введіть опис задачі (або натисніть «Пропустити опис»):", Escape(title))
}

func ChooseStatus() string {
	return "Оберіть статус задачі:"
}

func ChoosePriority() string {
	return "Оберіть пріоритет задачі:"
}

func EnterDueDate() string {
	return "Введіть дедлайн у форматі <code>дд.мм.рррр год:хв</code> або натисніть «Пропустити дедлайн»:"
}

func DateInvalid() string {
	return "Неправильний формат дати. Використовуйте <code>дд.мм.рррр год:хв</code> або <code>дд.мм.рррр</code>."
}

func TaskCreated(title string) string {
	return fmt.Sprintf("Задачу «%s» створено успішно!", Escape(title))
}

func TaskCreateFailed() string {
	return "Помилка при створенні задачі."
}

// Lists, detail, search, filters

func ResultsHeader() string {
	return "Результати:"
}

func NoTasksYet() string {
	return "У вас ще немає задач. Створіть першу!"
}

func NoTasksFound() string {
	return "Задач не знайдено за цим запитом."
}

func NoTasksForFilter() string {
	return "Задач за обраними фільтрами не знайдено."
}

func SearchPrompt() string {
	return "Введіть текст для пошуку по задачах (назва або опис):"
}

func FilterMenuPrompt() string {
	return "Оберіть параметр фільтрації:"
}

func FilterStatusPrompt() string {
	return "Оберіть статус для фільтрації:"
}

func FilterPriorityPrompt() string {
	return "Оберіть пріоритет для фільтрації:"
}

func FilterDeadlinePrompt() string {
	return "Введіть дату дедлайну у форматі <code>дд.мм.рррр</code> для фільтрації:"
}

func TaskDetail(title, description string, status, priority string, due *time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n\n", Escape(title))
	if description == "" {
		description = "Немає опису"
	}
	fmt.Fprintf(&b, "<b>Опис</b>: %s\n", Escape(description))
	fmt.Fprintf(&b, "<b>Статус</b>: %s\n", StatusLabel(status))
	fmt.Fprintf(&b, "<b>Пріоритет</b>: %s\n", PriorityLabel(priority))
	if due != nil {
		fmt.Fprintf(&b, "<b>Дедлайн</b>: %s\n", due.Format(DateLayout))
	}
	return b.String()
}

// Edit flow

func EditMenuPrompt() string {
	return "Що ви хочете змінити в задачі?"
}

func EnterNewTitle() string {
	return "Введіть нову назву задачі:"
}

func EnterNewDescription() string {
	return "Введіть новий опис задачі:"
}

func EnterNewDeadline() string {
	return "Введіть новий дедлайн у форматі <code>дд.мм.рррр год:хв</code> (або тільки дату):"
}

func TitleUpdated() string {
	return "Назву задачі змінено!"
}

func DescriptionUpdated() string {
	return "Опис задачі змінено!"
}

func DeadlineUpdated() string {
	return "Дедлайн змінено!"
}

func StatusUpdated() string {
	return "Статус задачі оновлено!"
}

func PriorityUpdated() string {
	return "Пріоритет задачі оновлено!"
}

func UpdateFailed() string {
	return "Помилка при оновленні задачі."
}

// Delete flow

func DeleteConfirmPrompt() string {
	return "Ви впевнені, що хочете видалити цю задачу?"
}

func TaskDeleted() string {
	return "Задачу видалено!"
}

func DeleteFailed() string {
	return "Помилка при видаленні задачі."
}

// Button labels

const (
	BtnMyTasks        = "Мої задачі"
	BtnCreateTask     = "Створити задачу"
	BtnSearchTasks    = "Пошук задач"
	BtnHelp           = "Довідка"
	BtnSkipDesc       = "Пропустити опис"
	BtnSkipDeadline   = "Пропустити дедлайн"
	BtnEdit           = "Редагувати"
	BtnDelete         = "Видалити"
	BtnAllTasks       = "Всі задачі"
	BtnEditTitle      = "Змінити назву"
	BtnEditDesc       = "Змінити опис"
	BtnEditStatus     = "Змінити статус"
	BtnEditPriority   = "Змінити пріоритет"
	BtnEditDeadline   = "Змінити дедлайн"
	BtnBackToTask     = "Назад до задачі"
	BtnBack           = "Назад"
	BtnConfirmDelete  = "Так, видалити"
	BtnCancel         = "Скасувати"
	BtnFilterStatus   = "Статус"
	BtnFilterPriority = "Пріоритет"
	BtnFilterDeadline = "Дата дедлайну"
	BtnFilterAgain    = "Фільтрувати ще раз"
	BtnBackToFilters  = "Назад до фільтрів"
)

func StatusLabel(status string) string {
	switch status {
	case "pending":
		return "Очікує"
	case "in_progress":
		return "В процесі"
	case "completed":
		return "Завершено"
	case "cancelled":
		return "Скасовано"
	}
	return status
}

func PriorityLabel(priority string) string {
	switch priority {
	case "low":
		return "Низький"
	case "medium":
		return "Середній"
	case "high":
		return "Високий"
	}
	return priority
}
