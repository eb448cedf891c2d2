// Package catalog holds the seeded list of local support resources.
package catalog

// Resource is one support service listed in the directory.
type Resource struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"type"`
	Address      string `json:"address"`
	Distance     string `json:"distance"`
	OpeningHours string `json:"openingHours"`
	Description  string `json:"description"`
	LastUpdated  string `json:"lastUpdated"`
	Upvotes      int    `json:"upvotes"`
	Downvotes    int    `json:"downvotes"`
}

// Seed returns a fresh copy of the built-in resources.
func Seed() []Resource {
	return []Resource{
		{
			ID:           "1",
			Name:         "Hackney Food Bank",
			Category:     "Food Bank",
			Address:      "25 Hackney Road, London E2 8GG",
			Distance:     "0.8 miles away",
			OpeningHours: "Mon-Fri: 10am-4pm, Sat: 10am-1pm",
			Description:  "Provides emergency food supplies to individuals and families in crisis. Referral may be required.",
			LastUpdated:  "2 days ago",
			Upvotes:      32,
			Downvotes:    2,
		},
		{
			ID:           "2",
			Name:         "East London Job Centre Plus",
			Category:     "Job Center",
			Address:      "14-18 Commercial Street, E1 6LP",
			Distance:     "1.2 miles away",
			OpeningHours: "Mon-Fri: 9am-5pm",
			Description:  "Government job center offering employment services, benefit claims and career advice.",
			LastUpdated:  "1 week ago",
			Upvotes:      18,
			Downvotes:    5,
		},
		{
			ID:           "3",
			Name:         "Digital Skills Training Hub",
			Category:     "Training Program",
			Address:      "36 Bethnal Green Road, E1 6GH",
			Distance:     "1.5 miles away",
			OpeningHours: "Mon-Thu: 9am-7pm, Fri: 9am-5pm",
			Description:  "Free digital skills courses for job seekers including web development, design and data analysis.",
			LastUpdated:  "3 days ago",
			Upvotes:      45,
			Downvotes:    1,
		},
		{
			ID:           "4",
			Name:         "Tower Hamlets Housing Support",
			Category:     "Housing Support",
			Address:      "45 Whitechapel Road, E1 1DU",
			Distance:     "1.8 miles away",
			OpeningHours: "Mon-Fri: 9am-5pm",
			Description:  "Provides housing advice, homelessness prevention services and temporary accommodation assistance.",
			LastUpdated:  "5 days ago",
			Upvotes:      29,
			Downvotes:    3,
		},
		{
			ID:           "5",
			Name:         "East End Financial Advice Centre",
			Category:     "Financial Aid",
			Address:      "12 Brick Lane, London E1 6RF",
			Distance:     "1.3 miles away",
			OpeningHours: "Mon, Wed, Fri: 10am-4pm",
			Description:  "Free financial advice, debt management support and benefits guidance for local residents.",
			LastUpdated:  "1 day ago",
			Upvotes:      37,
			Downvotes:    2,
		},
		{
			ID:           "6",
			Name:         "Bethnal Green Community Health Centre",
			Category:     "Healthcare",
			Address:      "27 Old Ford Road, E2 9PL",
			Distance:     "1.6 miles away",
			OpeningHours: "Mon-Fri: 8am-6:30pm",
			Description:  "Provides free healthcare services including mental health support and wellbeing programs.",
			LastUpdated:  "4 days ago",
			Upvotes:      51,
			Downvotes:    4,
		},
	}
}
