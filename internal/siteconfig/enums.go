package siteconfig

import "strings"

// ProjectStatus is how openly a project may be presented.
type ProjectStatus string

const (
	StatusPublic       ProjectStatus = "PUBLIC"
	StatusConfidential ProjectStatus = "CONFIDENTIAL"
	StatusConcept      ProjectStatus = "CONCEPT"
)

// DetailLevel controls how much of a project is shown.
type DetailLevel string

const (
	DetailBrief    DetailLevel = "BRIEF"
	DetailStandard DetailLevel = "STANDARD"
	DetailDeep     DetailLevel = "DEEP"
)

// Language tags a writing item.
type Language string

const (
	LanguageAuto Language = "AUTO"
	LanguageAR   Language = "AR"
	LanguageEN   Language = "EN"
)

// ParseStatus defaults to PUBLIC.
func ParseStatus(v any) ProjectStatus {
	s, _ := v.(string)
	switch ProjectStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusConfidential:
		return StatusConfidential
	case StatusConcept:
		return StatusConcept
	}
	return StatusPublic
}

// ParseDetailLevel defaults to STANDARD.
func ParseDetailLevel(v any) DetailLevel {
	s, _ := v.(string)
	switch DetailLevel(strings.ToUpper(strings.TrimSpace(s))) {
	case DetailBrief:
		return DetailBrief
	case DetailDeep:
		return DetailDeep
	}
	return DetailStandard
}

// ParseLanguage defaults to AUTO.
func ParseLanguage(v any) Language {
	s, _ := v.(string)
	switch Language(strings.ToUpper(strings.TrimSpace(s))) {
	case LanguageAR:
		return LanguageAR
	case LanguageEN:
		return LanguageEN
	}
	return LanguageAuto
}
