// Package chatbot отвечает на вопросы виджета чата: сначала по таблице правил,
// затем через внешнюю языковую модель.
package chatbot

import (
	"regexp"
	"strings"
)

// Rule — шаблон вопроса и готовый ответ.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Answer  string
}

// DefaultRules проверяются по порядку, срабатывает первое совпадение.
var DefaultRules = []Rule{
	{
		Name:    "logout",
		Pattern: regexp.MustCompile(`(?i)\blog\s?out\b|\bsign\s?out\b`),
		Answer:  "To log out, click the Logout button in the top navigation bar. Your session token is removed from this browser.",
	},
	{
		Name:    "login",
		Pattern: regexp.MustCompile(`(?i)\blog\s?in\b|\bsign\s?in\b`),
		Answer:  "To log in, click Login in the navigation bar and enter the email and password you registered with.",
	},
	{
		Name:    "register",
		Pattern: regexp.MustCompile(`(?i)\bregist(er|ration)\b|\bsign\s?up\b|create (an )?account`),
		Answer:  "To create an account, click Register, fill in your name, email and password, then log in with the same email and password.",
	},
	{
		Name:    "edit-blog",
		Pattern: regexp.MustCompile(`(?i)\b(edit|update|change)\b.*\b(blog|post)\b`),
		Answer:  "Open one of your own blogs and click Edit. Only the author of a blog can change its title, content, tags or image.",
	},
	{
		Name:    "delete-blog",
		Pattern: regexp.MustCompile(`(?i)\b(delete|remove)\b.*\b(blog|post)\b`),
		Answer:  "Open the blog and click Delete. Authors can delete their own blogs and admins can delete any blog. Its comments are removed too.",
	},
	{
		Name:    "read-blog",
		Pattern: regexp.MustCompile(`(?i)\b(read|open|view)\b.*\b(full|whole|entire)\b.*\b(blog|post)\b`),
		Answer:  "Click Read More on any blog card to open the full blog with its comments.",
	},
	{
		Name:    "comment",
		Pattern: regexp.MustCompile(`(?i)\bcomment`),
		Answer:  "Open a blog and use the comment box under it. You need to be logged in to comment, anyone can read comments.",
	},
	{
		Name:    "create-blog",
		Pattern: regexp.MustCompile(`(?i)\b(create|write|add|new|publish)\b.*\b(blog|post)\b`),
		Answer:  "Log in, then click Create Blog. Add a title, content, optional comma-separated tags and an optional image or video.",
	},
	{
		Name:    "like",
		Pattern: regexp.MustCompile(`(?i)\b(like|unlike)\b`),
		Answer:  "Click the heart on a blog to like it. Clicking it again removes your like. You need to be logged in.",
	},
	{
		Name:    "greeting",
		Pattern: regexp.MustCompile(`(?i)^\s*(hi|hello|hey|good (morning|afternoon|evening))\b[\s!.]*$`),
		Answer:  "Hi! Ask me anything about using BlogHub: accounts, writing blogs, likes or comments.",
	},
}

// Match возвращает первое подходящее правило.
func Match(rules []Rule, message string) (Rule, bool) {
	message = strings.TrimSpace(message)
	for _, r := range rules {
		if r.Pattern.MatchString(message) {
			return r, true
		}
	}
	return Rule{}, false
}
