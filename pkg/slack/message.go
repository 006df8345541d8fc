package slack

import (
	"fmt"

	goslack "github.com/slack-go/slack"
)

const maxBlockTextLength = 2900

var statusEmoji = map[string]string{
	"completed": ":white_check_mark:",
	"failed":    ":x:",
	"cancelled": ":no_entry_sign:",
}

var statusLabel = map[string]string{
	"completed": "Chart Generated",
	"failed":    "Chart Generation Failed",
	"cancelled": "Chart Generation Cancelled",
}

func jobURL(jobID, dashboardURL string) string {
	if dashboardURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/jobs/%s", dashboardURL, jobID)
}

// BuildJobStartedMessage creates Block Kit blocks for a job-submission
// notification.
func BuildJobStartedMessage(jobID, prompt string) []goslack.Block {
	text := fmt.Sprintf(":arrows_counterclockwise: *Generating chart* for: _%s_ (job `%s`)", truncateForSlack(prompt), jobID)

	return []goslack.Block{
		goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, text, false, false),
			nil, nil,
		),
	}
}

// BuildJobCompletedMessage creates Block Kit blocks for a terminal job
// notification.
func BuildJobCompletedMessage(input JobCompletedInput, dashboardURL string) []goslack.Block {
	emoji := statusEmoji[input.Status]
	if emoji == "" {
		emoji = ":question:"
	}
	label := statusLabel[input.Status]
	if label == "" {
		label = "Chart " + input.Status
	}

	headerText := fmt.Sprintf("%s *%s*", emoji, label)
	if input.Status == "completed" {
		headerText += fmt.Sprintf("\n%s (%s)", input.ComponentName, input.ChartType)
	} else if input.ErrorMessage != "" {
		headerText += fmt.Sprintf("\n\n*Error:*\n%s", truncateForSlack(input.ErrorMessage))
	}

	blocks := []goslack.Block{
		goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, headerText, false, false),
			nil, nil,
		),
	}

	if url := jobURL(input.JobID, dashboardURL); url != "" {
		btn := goslack.NewButtonBlockElement("", "", goslack.NewTextBlockObject(goslack.PlainTextType, "View Job", false, false))
		btn.URL = url
		blocks = append(blocks, goslack.NewActionBlock("", btn))
	}

	return blocks
}

func truncateForSlack(text string) string {
	if len(text) <= maxBlockTextLength {
		return text
	}
	return text[:maxBlockTextLength] + "\n\n_... (truncated)_"
}
