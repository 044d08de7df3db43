package model

import "fmt"

// Career types the backend accepts for a profile (stored verbatim).
const (
	CareerNewcomer    = "신입"
	CareerExperienced = "경력"
)

// Profile is the job seeker's basic information.
type Profile struct {
	ID         *int64 `json:"id,omitempty"`
	UserID     *int64 `json:"userId,omitempty"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	CareerType string `json:"careerType"`
	JobTitle   string `json:"jobTitle"`
	IsMatching *bool  `json:"isMatching,omitempty"`
}

// Conditions are the desired job conditions used for recommendations.
type Conditions struct {
	ID        *int64   `json:"id,omitempty"`
	UserID    *int64   `json:"userId,omitempty"`
	Jobs      []string `json:"jobs"`
	Locations []string `json:"locations"`
	Salary    string   `json:"salary"`
	Others    []string `json:"others"`
}

// Application tracks one job application.
type Application struct {
	ID       int64  `json:"id"`
	UserID   *int64 `json:"userId,omitempty"`
	Company  string `json:"company"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Deadline string `json:"deadline,omitempty"`
}

// ProfileCompletion flags which profile sections are filled in.
type ProfileCompletion struct {
	BasicInfo            bool `json:"basicInfo"`
	DesiredConditions    bool `json:"desiredConditions"`
	WorkExperience       bool `json:"workExperience"`
	Education            bool `json:"education"`
	Certificate          bool `json:"certificate"`
	Language             bool `json:"language"`
	Skill                bool `json:"skill"`
	Link                 bool `json:"link"`
	Military             bool `json:"military"`
	Portfolio            bool `json:"portfolio"`
	CompletionPercentage int  `json:"completionPercentage"`
}

// Stats are the aggregate dashboard counters.
type Stats struct {
	TotalApplications    int               `json:"totalApplications"`
	DocumentPassed       int               `json:"documentPassed"`
	FinalPassed          int               `json:"finalPassed"`
	Rejected             int               `json:"rejected"`
	ResumeCount          int               `json:"resumeCount"`
	CoverLetterCount     int               `json:"coverLetterCount"`
	BookmarkedCompanies  int               `json:"bookmarkedCompanies"`
	DeadlinesApproaching int               `json:"deadlinesApproaching"`
	ProfileCompletion    ProfileCompletion `json:"profileCompletion"`
}

// DashboardData is everything the dashboard page renders at once.
// Stats is nil when the backend returned none.
type DashboardData struct {
	Profile      *Profile      `json:"profile,omitempty"`
	Conditions   *Conditions   `json:"conditions,omitempty"`
	Applications []Application `json:"applications"`
	Stats        *Stats        `json:"stats,omitempty"`
}

// DefaultProfile is shown when the backend has no profile yet.
func DefaultProfile(userID int64, userName string) Profile {
	name := userName
	if name == "" {
		name = "User"
	}
	matching := true
	return Profile{
		UserID:     &userID,
		Name:       name,
		CareerType: CareerNewcomer,
		IsMatching: &matching,
	}
}

// DefaultConditions is shown when the backend has no desired conditions yet.
func DefaultConditions(userID int64) Conditions {
	return Conditions{
		UserID:    &userID,
		Jobs:      []string{},
		Locations: []string{},
		Salary:    "0",
		Others:    []string{},
	}
}

// RecommendationQuery is the body of a job recommendation request.
type RecommendationQuery struct {
	Keywords  []string `json:"keywords"`
	Locations []string `json:"locations"`
}

// JobRecommendation is one suggested posting.
type JobRecommendation struct {
	ID             string   `json:"id"`
	Company        string   `json:"company"`
	Title          string   `json:"title"`
	Location       string   `json:"location"`
	Experience     string   `json:"experience"`
	Education      string   `json:"education"`
	EmploymentType string   `json:"employmentType"`
	Salary         string   `json:"salary"`
	Deadline       string   `json:"deadline"`
	URL            string   `json:"url"`
	Keywords       []string `json:"keywords"`
	PostedDate     string   `json:"postedDate"`
	MatchScore     float64  `json:"matchScore"`
	Description    string   `json:"description,omitempty"`
	Requirements   string   `json:"requirements,omitempty"`
	Benefits       string   `json:"benefits,omitempty"`
	RecruitCount   string   `json:"recruitCount,omitempty"`
}

// DeadlineUnknown is the placeholder for postings without a deadline.
const DeadlineUnknown = "N/A"

// Normalize fills the fields the backend may omit. index is the posting's position in the response.
func (j *JobRecommendation) Normalize(index int) {
	if j.ID == "" {
		j.ID = fmt.Sprintf("%s-%s-%d", j.Company, j.Title, index)
	}
	if j.Deadline == "" {
		j.Deadline = DeadlineUnknown
	}
	if j.URL == "" {
		j.URL = "#"
	}
	if j.Keywords == nil {
		j.Keywords = []string{}
	}
}
