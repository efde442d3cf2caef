package model

// CourseFilter narrows the course listing. Empty fields match everything.
type CourseFilter struct {
	Term      string `form:"term" json:"term" binding:"omitempty,oneof=A B C D E1 E2 Fall Spring Summer"`
	Subject   string `form:"subject" json:"subject" binding:"omitempty,alphanum,max=16"`
	Level     string `form:"level" json:"level" binding:"omitempty,oneof=Undergraduate Graduate"`
	Available *bool  `form:"available" json:"available"`
	Page      int    `form:"page" json:"page" binding:"omitempty,min=1"`
	PerPage   int    `form:"per_page" json:"per_page" binding:"omitempty,min=1,max=500"`
}

// CourseLookup identifies one course in the URL path.
type CourseLookup struct {
	Subject string `uri:"subject" json:"subject" binding:"required,alphanum,max=16"`
	Code    string `uri:"code" json:"code" binding:"required,max=16"`
}
