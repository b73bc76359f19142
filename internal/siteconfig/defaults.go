package siteconfig

// Section ids understood by the home page.
const (
	SectionHero             = "hero"
	SectionFeaturedProjects = "featured-projects"
	SectionWriting          = "writing"
	SectionAbout            = "about"
	SectionContact          = "contact"
)

func intPtr(i int) *int { return &i }

// DefaultNav is the navigation used when none is stored.
func DefaultNav() NavConfig {
	return NavConfig{
		Links: []NavLink{
			{Label: "Home", Href: "/", Visible: true},
			{Label: "About", Href: "/about", Visible: true},
			{Label: "Projects", Href: "/projects", Visible: true},
			{Label: "Writing", Href: "/writing", Visible: true},
			{Label: "Resume", Href: "/resume", Visible: true},
			{Label: "Contact", Href: "/contact", Visible: true},
		},
		CTA: &NavCTA{Label: "Get in touch", Href: "/contact", Visible: true},
	}
}

// DefaultHomeSections is the home page layout used when none is stored.
func DefaultHomeSections() HomeSections {
	return HomeSections{
		{ID: SectionHero, Visible: true, Order: 0},
		{ID: SectionFeaturedProjects, Visible: true, Order: 1, Limit: intPtr(3)},
		{ID: SectionWriting, Visible: true, Order: 2, Limit: intPtr(5)},
		{ID: SectionAbout, Visible: true, Order: 3},
		{ID: SectionContact, Visible: true, Order: 4},
	}
}

// DefaultTheme follows the visitor's system preference.
func DefaultTheme() ThemeConfig {
	return ThemeConfig{Mode: ThemeSystem}
}

// DefaultSEO is the metadata used when none is stored.
func DefaultSEO() SEOConfig {
	return SEOConfig{
		Title:       "Portfolio",
		Description: "Selected projects, writing and resume.",
	}
}

// DefaultPages enables every optional page.
func DefaultPages() PagesConfig {
	return PagesConfig{
		Resume:  ResumePage{Enabled: true},
		Contact: ContactPage{Enabled: true, Socials: []SocialLink{}},
	}
}

// DefaultSettings is the fully populated settings object public reads fall back to.
func DefaultSettings() Settings {
	return Settings{
		Nav:          DefaultNav(),
		HomeSections: DefaultHomeSections(),
		Theme:        DefaultTheme(),
		SEO:          DefaultSEO(),
		Pages:        DefaultPages(),
	}
}

// DefaultSections shows every project block.
func DefaultSections() SectionsConfig {
	return SectionsConfig{
		Overview:     true,
		Problem:      true,
		Approach:     true,
		Architecture: true,
		Media:        true,
		Metrics:      true,
		DecisionLog:  true,
		Outcome:      true,
	}
}
