package services

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	msgTaskAssigned     = "notification.task.assigned"
	msgTaskFieldChanged = "notification.task.field_changed"
	msgTaskLabelAdded   = "notification.task.label_added"
	msgTaskLabelRemoved = "notification.task.label_removed"
	msgTaskCompleted    = "notification.task.completed"
	msgCommentEmployee  = "notification.comment.employee"
	msgCommentAdmin     = "notification.comment.admin"
	msgCommentReply     = "notification.comment.reply"
)

// fieldDisplayKeys maps watched field keys to their catalog entries. Keys
// missing here are shown raw.
var fieldDisplayKeys = map[string]string{
	FieldTitle:       "field.title",
	FieldDescription: "field.description",
	FieldStatus:      "field.status",
	FieldPriority:    "field.priority",
	FieldDueDate:     "field.due_date",
	FieldAssignedTo:  "field.assigned_to",
}

func init() {
	en := language.English
	message.SetString(en, msgTaskAssigned, "You have been assigned to task: %s")
	message.SetString(en, msgTaskFieldChanged, "Task %s was updated: %s changed from '%s' to '%s'")
	message.SetString(en, msgTaskLabelAdded, "Label '%s' was added to task: %s")
	message.SetString(en, msgTaskLabelRemoved, "Label '%s' was removed from task: %s")
	message.SetString(en, msgTaskCompleted, "An employee completed task: %s")
	message.SetString(en, msgCommentEmployee, "New comment from %s on task: %s")
	message.SetString(en, msgCommentAdmin, "An admin commented on your task: %s")
	message.SetString(en, msgCommentReply, "Reply to your comment on task: %s")
	message.SetString(en, "field.title", "the title")
	message.SetString(en, "field.description", "the description")
	message.SetString(en, "field.status", "the status")
	message.SetString(en, "field.priority", "the priority")
	message.SetString(en, "field.due_date", "the due date")
	message.SetString(en, "field.assigned_to", "the assignment")

	fr := language.French
	message.SetString(fr, msgTaskAssigned, "Vous avez été assigné à la tâche: %s")
	message.SetString(fr, msgTaskFieldChanged, "La tâche %s a été mise à jour: %s a changé de '%s' à '%s'")
	message.SetString(fr, msgTaskLabelAdded, "L'étiquette '%s' a été ajoutée à la tâche: %s")
	message.SetString(fr, msgTaskLabelRemoved, "L'étiquette '%s' a été retirée de la tâche: %s")
	message.SetString(fr, msgTaskCompleted, "L'employé a terminé la tâche: %s")
	message.SetString(fr, msgCommentEmployee, "Nouveau commentaire de %s sur la tâche: %s")
	message.SetString(fr, msgCommentAdmin, "Un admin a commenté votre tâche: %s")
	message.SetString(fr, msgCommentReply, "Réponse à votre commentaire sur la tâche: %s")
	message.SetString(fr, "field.title", "le titre")
	message.SetString(fr, "field.description", "la description")
	message.SetString(fr, "field.status", "le statut")
	message.SetString(fr, "field.priority", "la priorité")
	message.SetString(fr, "field.due_date", "la date d'échéance")
	message.SetString(fr, "field.assigned_to", "l'assignation")
}

// supportedLocales lists the catalogs registered in init. English comes first
// so the matcher falls back to it.
var supportedLocales = []language.Tag{language.English, language.French}

var localeMatcher = language.NewMatcher(supportedLocales)

// Messages renders notification text in one locale.
type Messages struct {
	printer *message.Printer
}

// NewMessages picks the closest catalog for locale. Empty, unparsable and
// unsupported locales get English.
func NewMessages(locale string) *Messages {
	return &Messages{printer: message.NewPrinter(matchLocale(locale))}
}

func matchLocale(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		return language.English
	}
	_, i, _ := localeMatcher.Match(tag)
	return supportedLocales[i]
}

func (m *Messages) FieldDisplayName(field string) string {
	key, ok := fieldDisplayKeys[field]
	if !ok {
		return field
	}
	return m.printer.Sprintf(key)
}

func (m *Messages) TaskAssigned(title string) string {
	return m.printer.Sprintf(msgTaskAssigned, title)
}

func (m *Messages) FieldChanged(title, field, oldValue, newValue string) string {
	return m.printer.Sprintf(msgTaskFieldChanged, title, m.FieldDisplayName(field), oldValue, newValue)
}

func (m *Messages) LabelAdded(label, title string) string {
	return m.printer.Sprintf(msgTaskLabelAdded, label, title)
}

func (m *Messages) LabelRemoved(label, title string) string {
	return m.printer.Sprintf(msgTaskLabelRemoved, label, title)
}

func (m *Messages) TaskCompleted(title string) string {
	return m.printer.Sprintf(msgTaskCompleted, title)
}

func (m *Messages) EmployeeCommented(author, title string) string {
	return m.printer.Sprintf(msgCommentEmployee, author, title)
}

func (m *Messages) AdminCommented(title string) string {
	return m.printer.Sprintf(msgCommentAdmin, title)
}

func (m *Messages) CommentReplied(title string) string {
	return m.printer.Sprintf(msgCommentReply, title)
}
