package dto

// StudentForm is the inbound wire shape for one student. The id is absent on
// register and required on update; everything else passes to the domain
// unchanged.
type StudentForm struct {
	StudentID *int64 `json:"studentId"`
	Fullname  string `json:"fullname"`
	KanaName  string `json:"kanaName"`
	Nickname  string `json:"nickname"`
	Email     string `json:"email"`
	Area      string `json:"area"`
	Telephone string `json:"telephone"`
	Age       int    `json:"age"`
	Sex       string `json:"sex"`
	Remark    string `json:"remark"`
	IsDeleted bool   `json:"isDeleted"`
}

// StudentCourseForm is the inbound wire shape for one course enrollment.
// The studentId and start date are accepted for wire compatibility but never
// honored: ownership always comes from the enclosing student, and a persisted
// start date is immutable.
type StudentCourseForm struct {
	CourseID      *int64 `json:"courseId"`
	StudentID     *int64 `json:"studentId"`
	CourseName    string `json:"courseName"`
	CourseStartAt *Date  `json:"courseStartAt"`
	CourseEndAt   *Date  `json:"courseEndAt"`
}

// StudentDetailForm is the register/update request body.
type StudentDetailForm struct {
	Student           *StudentForm        `json:"student"`
	StudentCourseList []StudentCourseForm `json:"studentCourseList"`
}

// StudentResponse is the outbound shape for one student with its identity
// flattened to a raw integer.
type StudentResponse struct {
	StudentID int64  `json:"studentId"`
	Fullname  string `json:"fullname"`
	KanaName  string `json:"kanaName"`
	Nickname  string `json:"nickname"`
	Email     string `json:"email"`
	Area      string `json:"area"`
	Telephone string `json:"telephone"`
	Age       int    `json:"age"`
	Sex       string `json:"sex"`
	Remark    string `json:"remark"`
	IsDeleted bool   `json:"isDeleted"`
}

// StudentCourseResponse is the outbound shape for one enrollment.
type StudentCourseResponse struct {
	CourseID      int64  `json:"courseId"`
	CourseName    string `json:"courseName"`
	CourseStartAt Date   `json:"courseStartAt"`
	CourseEndAt   Date   `json:"courseEndAt"`
}

// StudentDetailResponse is the aggregate display shape.
type StudentDetailResponse struct {
	Student           StudentResponse         `json:"student"`
	StudentCourseList []StudentCourseResponse `json:"studentCourseList"`
}
