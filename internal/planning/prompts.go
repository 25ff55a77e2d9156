package planning

import (
	"fmt"
	"math"
)

// DefaultDurationDays is used when a plan is requested without a usable duration.
const DefaultDurationDays = 7

const minPlanTasks = 5

// planSystemPrompt frames the model as a planner and fixes the output contract.
const planSystemPrompt = `You are a senior project manager and tech lead.
You break projects down into concrete, actionable tasks laid out on a day-by-day timeline.
Output ONLY a JSON array. No markdown, no commentary before or after it.`

const planPromptTemplate = `# ROLE
You are a senior project manager and tech lead planning a project end to end.

# ASSIGNMENT
Plan the project: %q
Duration: %d days.
Produce between %d and %d tasks spread across the whole duration.

# LANGUAGE RULES
1. Titles start with a verb and name the concrete deliverable, e.g. "Design database schema", "Configure CI pipeline".
2. Descriptions are plain text bullet lists. Use an escaped newline (\n) between bullets. NEVER return an array for the description.

# REQUIRED JSON STRUCTURE
[
  {
    "title": "Verb + deliverable",
    "description": "A single string containing \n line breaks",
    "priority": "high" | "normal" | "low",
    "daysFromNow": integer between 1 and %d
  }
]

daysFromNow is the day the task is due, where 1 is the first day of the project.

# EXAMPLE OUTPUT
[
  {
    "title": "Initialize repository and CI/CD",
    "description": "- Create the Git repository and monorepo layout\n- Write the GitHub Actions workflow\n- Set up the Node.js toolchain",
    "priority": "high",
    "daysFromNow": 1
  },
  {
    "title": "Design database schema",
    "description": "- Model table relationships (ERD)\n- Write PostgreSQL migration scripts\n- Review the data structures",
    "priority": "high",
    "daysFromNow": 2
  }
]`

// TaskCountRange returns the number of tasks to ask the model for.
func TaskCountRange(durationDays int) (minTasks, maxTasks int) {
	if durationDays <= 0 {
		durationDays = DefaultDurationDays
	}
	minTasks = max(minPlanTasks, durationDays)
	maxTasks = int(math.Ceil(float64(durationDays) * 1.5))
	// Short projects would otherwise get a max below the floor.
	maxTasks = max(maxTasks, minTasks)
	return minTasks, maxTasks
}

// BuildPlanPrompt builds the user prompt asking for a task breakdown of the
// named project. A non-positive duration falls back to DefaultDurationDays.
func BuildPlanPrompt(projectName string, durationDays int) string {
	if durationDays <= 0 {
		durationDays = DefaultDurationDays
	}
	minTasks, maxTasks := TaskCountRange(durationDays)
	return fmt.Sprintf(planPromptTemplate, projectName, durationDays, minTasks, maxTasks, durationDays)
}

const describeSystemPrompt = `You are an experienced project manager.
Write concise, professional text. Go straight to the point: no greetings, no preamble, no markdown headings.`

const projectDescriptionTemplate = `Write a short description (2-3 sentences) of the goals and scope of the project %q.
Example: "Inventory management system" -> "Design and roll out an automated inventory management solution with barcode scanning to streamline goods in and out and reduce stock loss."`

const taskDescriptionTemplate = `Project: %q
Task: %q
Write 3-4 short bullet points describing the concrete steps to complete this task.
Start each bullet with "- " and put each on its own line.`

// BuildProjectDescriptionPrompt asks for a 2-3 sentence project summary.
func BuildProjectDescriptionPrompt(projectName string) string {
	return fmt.Sprintf(projectDescriptionTemplate, projectName)
}

// BuildTaskDescriptionPrompt asks for a bullet list of steps for one task.
func BuildTaskDescriptionPrompt(projectName, taskTitle string) string {
	return fmt.Sprintf(taskDescriptionTemplate, projectName, taskTitle)
}
