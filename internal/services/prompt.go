package services

import (
	"fmt"
	"sort"
)

const (
	PromptProfile = "profile"
	PromptMatch   = "match"
)

// PromptTemplate is an immutable instruction sent after the resume image.
type PromptTemplate struct {
	Key  string
	Text string
}

const profilePrompt = "\n" +
	"You are an experienced HR with tech experience in the fields of Data Science, Full Stack Web Development, Big Data Engineering, DEVOPS, and Data Analysis. \n" +
	"Your task is to review the provided resume against the job description for these profiles.\n" +
	"Please share your professional evaluation on whether the candidate's profile aligns with the role. \n" +
	"Highlight the strengths and weaknesses of the applicant in relation to the specified job requirements.\n"

const matchPrompt = "\n" +
	"You are a skilled ATS (Applicant Tracking System) scanner with a deep understanding of data science and ATS functionality. \n" +
	"Your task is to evaluate the resume against the provided job description. \n" +
	"Give me the percentage of match if the resume matches the job description. \n" +
	"First, the output should come as a percentage, followed by missing keywords, and finally your overall thoughts.\n"

// PromptCatalog is the closed set of templates, built once at startup.
type PromptCatalog struct {
	templates map[string]PromptTemplate
}

func NewPromptCatalog() *PromptCatalog {
	return &PromptCatalog{
		templates: map[string]PromptTemplate{
			PromptProfile: {Key: PromptProfile, Text: profilePrompt},
			PromptMatch:   {Key: PromptMatch, Text: matchPrompt},
		},
	}
}

func (c *PromptCatalog) Resolve(key string) (PromptTemplate, error) {
	tmpl, ok := c.templates[key]
	if !ok {
		return PromptTemplate{}, fmt.Errorf("%w: %q", ErrInvalidPromptKey, key)
	}
	return tmpl, nil
}

func (c *PromptCatalog) Keys() []string {
	keys := make([]string, 0, len(c.templates))
	for k := range c.templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
