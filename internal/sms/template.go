package sms

import (
	"regexp"
	"strings"

	"github.com/acoustichub/crm/internal/branches"
	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

const defaultClientName = "Mijoz"

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

const defaultTemplate = `Assalomu alaykum {{client_name}}!

Acoustic слуховые центры
📍 {{branch_name}}
{{branch_address}}
📞 {{branch_phone}}

⏰ Ish vaqti: {{working_hours}}

Bepul tekshiruv uchun qo'ng'iroq qiling!`

// Render fills the branch template, or the default one, for client.
// Unknown placeholders render empty.
func Render(branch sqlc.Branch, client sqlc.Client) string {
	name := strings.TrimSpace(db.TextValue(client.Name))
	if name == "" {
		name = defaultClientName
	}
	vars := map[string]string{
		"client_name":    name,
		"branch_name":    branch.Name,
		"branch_address": db.TextValue(branch.Address),
		"branch_phone":   db.TextValue(branch.Phone),
		"working_hours":  branches.FormatHours(branch.WorkingHours),
	}
	tmpl := strings.TrimSpace(db.TextValue(branch.SmsTemplate))
	if tmpl == "" {
		tmpl = defaultTemplate
	}
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		return vars[placeholderPattern.FindStringSubmatch(m)[1]]
	})
}
