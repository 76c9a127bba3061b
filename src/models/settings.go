package models

// TeacherCredentialsID is the document id of the shared teacher login.
const TeacherCredentialsID = "teacher_auth"

// TeacherCredentials is the singleton settings/teacher_auth document.
// Password holds a bcrypt hash; documents written before hashing hold plaintext.
type TeacherCredentials struct {
	Username string `bson:"username" json:"username" validate:"required"`
	Password string `bson:"password" json:"-"`
}
