// Package counselor answers free-text career questions with rule-based replies
// tailored to the asker's profile.
package counselor

import (
	"fmt"
	"strings"

	"github.com/jonathan/career-guidance/internal/matching"
)

// Topic is the subject a message was routed to
type Topic string

const (
	TopicSkills     Topic = "skills"
	TopicCareers    Topic = "careers"
	TopicTransition Topic = "transition"
	TopicResources  Topic = "resources"
	TopicInterview  Topic = "interview"
	TopicSalary     Topic = "salary"
	TopicRemote     Topic = "remote"
	TopicGeneral    Topic = "general"
)

// Profile is what the counselor knows about the asker
type Profile struct {
	Education string
	Skills    []string
	Interests []string
	// SuggestedCareers are the user's current top matches, if known
	SuggestedCareers []string
}

// routes are checked in order; the first topic with a keyword in the message wins
var routes = []struct {
	topic    Topic
	keywords []string
}{
	{TopicSkills, []string{"skill", "learn"}},
	{TopicCareers, []string{"career", "job", "path"}},
	{TopicTransition, []string{"transition", "change", "switch"}},
	{TopicResources, []string{"resource", "course", "tutorial"}},
	{TopicInterview, []string{"interview", "prepare"}},
	{TopicSalary, []string{"salary", "pay", "compensation"}},
	{TopicRemote, []string{"remote", "work from home"}},
}

// Classify routes a message to a topic by keyword
func Classify(message string) Topic {
	msg := matching.Normalize(message)
	for _, r := range routes {
		for _, k := range r.keywords {
			if strings.Contains(msg, k) {
				return r.topic
			}
		}
	}
	return TopicGeneral
}

// Reply answers message for the given profile. It never fails; unknown
// questions get an overview of what the counselor can help with.
func Reply(p Profile, message string) string {
	switch Classify(message) {
	case TopicSkills:
		return skillsReply(p)
	case TopicCareers:
		return careersReply(p)
	case TopicTransition:
		return transitionReply(p)
	case TopicResources:
		return resourcesReply(p)
	case TopicInterview:
		return interviewReply(p)
	case TopicSalary:
		return salaryReply(p)
	case TopicRemote:
		return remoteReply(p)
	default:
		return generalReply(p)
	}
}

// list joins up to n items, or returns fallback when there are none
func list(items []string, n int, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	if n > 0 && len(items) > n {
		items = items[:n]
	}
	return strings.Join(items, ", ")
}

func first(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return items[0]
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func numbered(items []string) string {
	var sb strings.Builder
	for i, item := range items {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, item)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

var inDemandSkills = []string{
	"Cloud platforms (AWS, Azure, Google Cloud)",
	"Machine learning and applied AI",
	"DevOps and CI/CD pipelines",
	"Full-stack web development",
	"Cybersecurity fundamentals",
	"Data analysis and visualization",
}

func skillsReply(p Profile) string {
	return fmt.Sprintf("You already work with %s, which is a solid base to build on. "+
		"These skills are in strong demand right now:\n\n%s\n\n"+
		"Tell me which one you want to pursue and I will point you to resources for it.",
		list(p.Skills, 0, "technology"), numbered(inDemandSkills))
}

var defaultDirections = []string{
	"Software Development: designing and building applications",
	"Data Science: turning data into decisions",
	"Cloud Architecture: planning systems that scale",
	"Product Management: connecting engineering with the business",
}

func careersReply(p Profile) string {
	directions := defaultDirections
	intro := "A few directions look promising for you:"
	if len(p.SuggestedCareers) > 0 {
		directions = p.SuggestedCareers
		intro = "Your strongest matches in our catalog are:"
	}
	return fmt.Sprintf("Here is what I know about your background:\n\n"+
		"Education: %s\nInterests: %s\nTop skills: %s\n\n%s\n\n%s\n\n"+
		"Ask me about any of them for more detail, or run a skill gap check against one.",
		orDefault(p.Education, "not specified"),
		list(p.Interests, 0, "not specified yet"),
		list(p.Skills, 3, "not specified yet"),
		intro, numbered(directions))
}

func transitionReply(p Profile) string {
	count := "several"
	if len(p.Skills) > 0 {
		count = fmt.Sprint(len(p.Skills))
	}
	return fmt.Sprintf("Changing direction is very doable. You bring %s skills with you, "+
		"and many of them carry over.\n\nA practical plan:\n%s\n\n"+
		"Your experience with %s is useful in more fields than you might expect. "+
		"Which field are you thinking of moving into?",
		count, numbered([]string{
			"Pick a target role",
			"Compare its requirements with what you know today",
			"Build two or three portfolio projects aimed at the gap",
			"Talk to people already doing the job",
			"Add a certification if the field values them",
		}), first(p.Skills, "technology"))
}

func resourcesReply(p Profile) string {
	return fmt.Sprintf("Good places to learn, depending on how you like to study:\n\n"+
		"Structured courses: Coursera, edX, Udemy, Pluralsight\n"+
		"Free and project based: freeCodeCamp, The Odin Project\n"+
		"Video: conference talks and YouTube channels focused on %s\n"+
		"Practice: LeetCode for algorithms, Kaggle for data, GitHub for real projects\n\n"+
		"Start with one structured course, then apply it in a small project of your own.",
		first(p.Skills, "programming"))
}

func interviewReply(p Profile) string {
	return fmt.Sprintf("Interview preparation works best in two tracks.\n\nTechnical:\n%s\n\n"+
		"Behavioral:\n%s\n\nMock interviews with a peer help a lot. What role are you interviewing for?",
		numbered([]string{
			"Solve practice problems regularly (LeetCode, HackerRank)",
			"Review the fundamentals of " + first(p.Skills, "your field"),
			"Have a portfolio ready to walk through",
			"Practice explaining a system design end to end",
		}),
		numbered([]string{
			"Answer with the STAR structure: situation, task, action, result",
			"Prepare short stories that show your strongest skills",
			"Research the company and the team before the call",
		}))
}

func salaryReply(p Profile) string {
	return fmt.Sprintf("Pay depends mostly on experience, location, company stage and industry, "+
		"and on how in demand your skills are (%s in your case).\n\n"+
		"When negotiating:\n%s\n\n"+
		"Cloud architecture, machine learning and security are among the best paid specialties at the moment.",
		list(p.Skills, 2, "your strongest skills"),
		numbered([]string{
			"Check market data on Glassdoor or Levels.fyi",
			"Anchor on the value of your skills, not your previous salary",
			"Compare total compensation including equity and benefits",
			"Negotiate politely and in writing",
		}))
}

func remoteReply(p Profile) string {
	return fmt.Sprintf("Remote roles are common in software development, data analysis, UX design, "+
		"digital marketing and technical writing. Remote-focused boards such as We Work Remotely, "+
		"Remote OK and FlexJobs are a good start, as are company career pages.\n\n"+
		"Remote teams value clear written communication and self-management. "+
		"With your background in %s you are in a good position to apply.",
		list(p.Skills, 0, "technology"))
}

func generalReply(p Profile) string {
	return fmt.Sprintf("I can help with choosing a career path, building skills, finding learning resources, "+
		"job searching, interview preparation and salary negotiation.\n\n"+
		"What I know about you so far:\nEducation: %s\nInterests: %s\nSkills: %s\n\n"+
		"Ask me something specific to get started.",
		orDefault(p.Education, "not specified"),
		list(p.Interests, 0, "not specified"),
		list(p.Skills, 0, "add your skills to get personalised advice"))
}
