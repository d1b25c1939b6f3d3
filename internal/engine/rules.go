package engine

import (
	"strconv"

	"github.com/AD1529/xapi-consolidate/internal/record"
)

// Condition helpers used by the default table and by tests. A condition on
// "courseid" takes the id as an integer.

func eq(field, value string) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

func neq(field, value string) Condition {
	return Condition{Field: field, Op: OpNeq, Value: value}
}

func contains(field, value string) Condition {
	return Condition{Field: field, Op: OpContains, Value: value}
}

func containsFold(field, value string) Condition {
	return Condition{Field: field, Op: OpContainsFold, Value: value}
}

func containsAny(field, value string) Condition {
	return Condition{Field: field, Op: OpContainsAny, Value: value}
}

func course(id int) Condition {
	return Condition{Field: "courseid", Op: OpEq, Value: strconv.Itoa(id)}
}

func notCourse(id int) Condition {
	return Condition{Field: "courseid", Op: OpNeq, Value: strconv.Itoa(id)}
}

func area(value string, when ...Condition) Rule {
	return Rule{Target: TargetCourseArea, Value: value, When: when}
}

func component(value string, when ...Condition) Rule {
	return Rule{Target: TargetComponent, Value: value, When: when}
}

func event(value string, when ...Condition) Rule {
	return Rule{Target: TargetEventName, Value: value, When: when}
}

// DefaultRules returns the built-in classification table.
//
// The table is ordered and later rules overwrite earlier ones; moving an
// entry changes the result. It runs in four blocks: course-area overrides
// for site-wide actions, component canonicalization, event-name
// canonicalization, and status derivation. Rules inside a block often read
// values a previous block (or a previous rule in the same block) already
// wrote — e.g. the event-name rules match on canonical component labels,
// and the assignment block folds the submission components into
// "Assignment" only after the upload events that distinguish them have
// fired.
//
// Deployments with a different event vocabulary can replace the table
// wholesale via a CUE rules directory (see the compiler package); the
// engine mechanism does not change.
func DefaultRules() []Rule {
	rules := courseAreaRules()
	rules = append(rules, componentRules()...)
	rules = append(rules, eventNameRules()...)
	rules = append(rules, statusRules()...)
	return rules
}

// courseAreaRules reclassifies site-wide, authentication, profile and
// social-interaction actions that have no course context. Direct courseid
// lookup has already run; these overrides win over it.
func courseAreaRules() []Rule {
	return []Rule{
		// authentication
		area("Authentication", eq("event_name", "user_loggedin")),
		area("Authentication", eq("event_name", "user_loggedout")),

		// overall site
		area("Moodle Site", eq("event_name", "course_viewed"), course(record.CourseFrontPage)),
		area("Moodle Site", eq("event_name", "user_created")),
		area("Moodle Site", eq("event_name", "user_deleted")),
		area("Moodle Site", eq("event_name", "role_updated")),
		area("Moodle Site", eq("event_name", "role_assigned"), course(record.CourseFrontPage)),
		area("Moodle Site", eq("event_name", "role_unassigned"), course(record.CourseFrontPage)),
		area("Moodle Site", eq("event_name", "user_enrolment_deleted"), course(record.CourseFrontPage)),
		area("Moodle Site", eq("event_name", "user_enrolment_updated"), course(record.CourseFrontPage)),
		area("Moodle Site", contains("event_name", "course_category")),
		area("Moodle Site", eq("event_name", "courses_searched")),
		area("Moodle Site", contains("event_name", "notification")),
		area("Moodle Site", eq("event_name", "user_report_viewed"), eq("component", "mod_forum"), course(record.CourseNone)),

		// profile
		area("Profile", contains("event_name", "dashboard")),
		area("Profile", eq("event_name", "user_profile_viewed"), course(record.CourseNone)),
		area("Profile", eq("event_name", "grade_report_viewed"), course(record.CourseNone)),
		area("Profile", eq("event_name", "user_password_updated")),
		area("Profile", eq("event_name", "user_updated")),

		// social interaction
		area("Social interaction", containsFold("event_name", "message"), neq("component", "mod_chat")),
	}
}

// componentRules maps raw technical module identifiers to canonical
// human labels. The completion-update rule runs first: its records carry
// component "System" and the true module has to be recovered from the
// activity URL before the mod_* renames below can see it.
func componentRules() []Rule {
	return []Rule{
		{Target: TargetComponent, Derive: DeriveModuleFromPath, When: []Condition{eq("event_name", "course_module_completion_updated")}},
		component("DELETE", contains("component", "https")),

		// assignment
		component("File submissions", eq("component", "assignsubmission_file")),
		component("Online text submissions", eq("component", "assignsubmission_onlinetext")),
		component("Assignment", eq("component", "mod_assign")),

		// attendance
		component("Attendance", eq("component", "mod_attendance")),

		// authentication
		component("Login", eq("event_name", "user_loggedin")),
		component("Logout", eq("event_name", "user_loggedout")),

		component("Big Blue Button", eq("component", "mod_bigbluebuttonbn")),
		component("Book", eq("component", "mod_book")),
		component("Book", eq("component", "booktool_print")),
		component("Chat", eq("component", "mod_chat")),
		component("Checklist", eq("component", "mod_checklist")),
		component("Choice", eq("component", "mod_choice")),

		// course home
		component("Course home", notCourse(record.CourseNone), eq("event_name", "course_viewed")),

		// courses list
		component("Courses list", eq("event_name", "course_category_viewed")),
		component("Courses list", eq("event_name", "courses_searched")),

		component("Dashboard", contains("event_name", "dashboard")),
		component("Database", eq("component", "mod_data")),
		component("Enrolment", contains("event_name", "user_enrolment")),
		component("Feedback", eq("component", "mod_feedback")),
		component("File", eq("component", "mod_resource")),
		component("Folder", eq("component", "mod_folder")),
		component("Forum", eq("component", "mod_forum")),
		component("Glossary", eq("component", "mod_glossary")),

		// grades
		component("Grades", eq("event_name", "grade_report_viewed")),
		component("Grades", eq("event_name", "course_user_report_viewed")),
		component("Grades", eq("event_name", "grade_item_updated")),
		component("Grades", eq("event_name", "grade_item_created")),

		component("Group choice", eq("component", "mod_choicegroup")),

		// groups
		component("Groups", eq("event_name", "group_member_added")),
		component("Groups", eq("event_name", "group_member_removed")),
		component("Groups", containsAny("event_name", "group|Grouping"), neq("event_name", "group_message_sent")),

		component("H5P", eq("component", "mod_h5pactivity")),
		component("IMS content package", eq("component", "mod_imscp")),
		component("Label", eq("component", "mod_label")),
		component("Lesson", eq("component", "mod_lesson")),
		component("External tool", eq("component", "mod_lti")),

		// messaging
		component("Messaging", containsFold("event_name", "message"), neq("component", "mod_chat")),
		component("Notification", contains("event_name", "notification")),

		component("Page", eq("component", "mod_page")),
		component("Questionnaire", eq("component", "mod_questionnaire")),

		// quiz
		component("Quiz", contains("event_name", "Question"), eq("component", "core")),
		component("Quiz", eq("component", "mod_quiz")),

		component("Recent activity", eq("event_name", "recent_activity_viewed")),

		// role events, the reconstructor keys off this label
		component("Role", contains("event_name", "role")),

		component("SCORM package", eq("component", "mod_scorm")),
		component("Site home", course(record.CourseFrontPage), eq("event_name", "course_viewed")),
		component("System", eq("event_name", "user_created")),
		component("URL", eq("component", "mod_url")),

		// user profile
		component("Profile", eq("event_name", "user_list_viewed")),
		component("User profile", eq("event_name", "user_updated")),
		component("User profile", eq("event_name", "user_profile_viewed")),

		component("Wiki", eq("component", "mod_wiki")),
		component("Wooclap", eq("component", "mod_wooclap")),
	}
}

// eventNameRules rewrites raw event identifiers into the extended readable
// form. Rules that share a raw identifier across modules disambiguate on
// the canonical component written by componentRules.
func eventNameRules() []Rule {
	return []Rule{
		// assignment
		event("A submission has been submitted.", eq("event_name", "assessable_submitted")),
		event("Feedback viewed", eq("event_name", "feedback_viewed")),
		event("Remove submission confirmation viewed.", eq("event_name", "remove_submission_form_viewed")),
		event("Submission confirmation form viewed.", eq("event_name", "submission_confirmation_form_viewed")),
		event("The user duplicated their submission.", eq("event_name", "submission_duplicated")),
		event("Submission form viewed.", eq("event_name", "submission_form_viewed")),
		event("The submission has been graded.", eq("event_name", "submission_graded")),
		event("The status of the submission has been viewed.", eq("event_name", "submission_status_viewed")),
		event("A file has been uploaded.", eq("event_name", "assessable_uploaded"), eq("component", "File submissions")),
		event("An online text has been uploaded.", eq("event_name", "assessable_uploaded"), eq("component", "Online text submissions")),
		event("Submission viewed.", eq("event_name", "submission_viewed"), eq("component", "Assignment")),
		// fold submission components into Assignment only now that the
		// upload events above have used them to disambiguate
		component("Assignment", eq("component", "File submissions")),
		component("Assignment", eq("component", "Online text submissions")),
		event("Submission created.", eq("event_name", "submission_created"), eq("component", "Assignment")),
		event("Submission updated.", eq("event_name", "submission_updated"), eq("component", "Assignment")),

		// attendance
		event("Attendance taken by student", eq("event_name", "attendance_taken_by_student")),
		event("Session report viewed", eq("event_name", "session_report_viewed")),

		// big blue button
		event("Activity viewed", eq("event_name", "activity_viewed")),
		event("BigBlueButtonBN activity management viewed", eq("event_name", "bigbluebuttonbn_activity_management_viewed")),
		event("Live session event", eq("event_name", "live_session_event")),
		event("Meeting created", eq("event_name", "meeting_created")),
		event("Meeting ended", eq("event_name", "meeting_ended")),
		event("Meeting joined", eq("event_name", "meeting_joined")),
		event("Meeting left", eq("event_name", "meeting_left")),
		event("Recording deleted", eq("event_name", "recording_deleted")),
		event("Recording edited", eq("event_name", "recording_edited")),
		event("Recording imported", eq("event_name", "recording_imported")),
		event("Recording protected", eq("event_name", "recording_protected")),
		event("Recording published", eq("event_name", "recording_published")),
		event("Recording unprotected", eq("event_name", "recording_unprotected")),
		event("Recording unpublished", eq("event_name", "recording_unpublished")),
		event("Recording viewed", eq("event_name", "recording_viewed")),

		// book
		event("Book printed", eq("event_name", "book_printed")),
		event("Chapter viewed", eq("event_name", "chapter_viewed")),
		event("Chapter printed", eq("event_name", "chapter_printed")),

		// category
		event("Category viewed", eq("event_name", "course_category_viewed")),
		event("Search results viewed", eq("event_name", "search_results_viewed")),

		// chat
		event("Sessions viewed", eq("event_name", "sessions_viewed")),

		// checklist
		event("Checklist complete", eq("event_name", "checklist_completed")),
		event("Student checks updated", eq("event_name", "student_checks_updated")),

		// choice
		event("Choice answer added", eq("event_name", "answer_created")),
		event("Choice answer deleted", eq("event_name", "answer_deleted")),

		// comment
		event("Comment created", eq("event_name", "comment_created")),
		event("Comment deleted", eq("event_name", "comment_deleted")),

		// course
		event("Course viewed", eq("event_name", "course_viewed")),
		event("Course completed", eq("event_name", "course_completed")),
		event("Course summary viewed", eq("event_name", "course_information_viewed")),
		event("Course activity completion updated", eq("event_name", "course_module_completion_updated")),
		event("Course module instance list viewed", eq("event_name", "course_resources_list_viewed")),
		event("Courses searched", eq("event_name", "courses_searched")),
		event("Course user report viewed", eq("event_name", "course_user_report_viewed")),
		event("Course module instance list viewed", eq("event_name", "course_module_instance_list_viewed")),
		event("Course module viewed", eq("event_name", "course_module_viewed")),

		// dashboard
		event("Dashboard reset", eq("event_name", "dashboard_reset")),
		event("Dashboard viewed", eq("event_name", "dashboard_viewed")),

		// database
		event("Record created", eq("event_name", "record_created")),
		event("Record deleted", eq("event_name", "record_deleted")),
		event("Record updated", eq("event_name", "record_updated")),

		// enrolment
		event("User enrolled in course", eq("event_name", "user_enrolment_created")),
		event("User unenrolled from course", eq("event_name", "user_enrolment_deleted")),
		event("User enrolment updated", eq("event_name", "user_enrolment_updated")),

		// feedback
		event("Response deleted", eq("event_name", "response_deleted")),
		event("Response submitted", eq("event_name", "response_submitted"), eq("component", "Feedback")),

		// folder
		event("Zip archive of folder downloaded", eq("event_name", "all_files_downloaded")),

		// forum
		event("Some content has been posted.", eq("event_name", "assessable_uploaded"), eq("component", "Forum")),
		event("Course searched", eq("event_name", "course_searched")),
		event("Discussion created", eq("event_name", "discussion_created")),
		event("Discussion deleted", eq("event_name", "discussion_deleted")),
		event("Discussion subscription created", eq("event_name", "discussion_subscription_created")),
		event("Discussion subscription deleted", eq("event_name", "discussion_subscription_deleted")),
		event("Discussion viewed", eq("event_name", "discussion_viewed")),
		event("Post created", eq("event_name", "post_created")),
		event("Post deleted", eq("event_name", "post_deleted")),
		event("Post updated", eq("event_name", "post_updated")),
		event("Read tracking disabled", eq("event_name", "readtracking_disabled")),
		event("Read tracking enabled", eq("event_name", "readtracking_enabled")),
		event("Subscription created", eq("event_name", "subscription_created")),
		event("Subscription deleted", eq("event_name", "subscription_deleted")),
		event("User report viewed", eq("event_name", "user_report_viewed")),

		// glossary
		event("Entry has been created", eq("event_name", "entry_created")),
		event("Entry has been deleted", eq("event_name", "entry_deleted")),
		event("Entry has been updated", eq("event_name", "entry_updated")),
		event("Entry has been viewed", eq("event_name", "entry_viewed")),

		// grades
		event("Grade item created", eq("event_name", "grade_item_created")),
		event("Grade item updated", eq("event_name", "grade_item_updated")),
		event("Grade overview report viewed", eq("event_name", "grade_report_viewed"), course(record.CourseNone)),
		event("Grade user report viewed", eq("event_name", "grade_report_viewed"), notCourse(record.CourseNone)),

		// groups
		event("Group member added", eq("event_name", "group_member_added")),
		event("Group member removed", eq("event_name", "group_member_removed")),

		// group choice
		event("Choice removed", eq("event_name", "choice_removed")),
		event("Choice made", eq("event_name", "choice_updated")),

		// h5p
		event("Report viewed", eq("event_name", "report_viewed")),
		event("xAPI statement received", eq("event_name", "statement_received")),

		// lesson
		event("Content page viewed", eq("event_name", "content_page_viewed")),
		event("Lesson ended", eq("event_name", "lesson_ended")),
		event("Lesson restarted", eq("event_name", "lesson_restarted")),
		event("Lesson resumed", eq("event_name", "lesson_resumed")),
		event("Lesson started", eq("event_name", "lesson_started")),
		event("Question answered", eq("event_name", "question_answered")),
		event("Question viewed", eq("event_name", "question_viewed")),

		// login
		event("User has logged in", eq("event_name", "user_loggedin")),
		event("User logged out", eq("event_name", "user_loggedout")),

		// messaging
		event("Group message sent", eq("event_name", "group_message_sent")),
		event("Message sent", eq("event_name", "message_sent")),
		event("Message deleted", eq("event_name", "message_deleted")),
		event("Message viewed", eq("event_name", "message_viewed")),

		// notification
		event("Notification sent", eq("event_name", "notification_sent")),
		event("Notification viewed", eq("event_name", "notification_viewed")),

		// profile
		event("User profile viewed", eq("event_name", "user_profile_viewed")),
		event("User updated", eq("event_name", "user_updated")),

		// questionnaire
		event("All Responses report viewed", eq("event_name", "all_responses_viewed")),
		event("Attempt resumed", eq("event_name", "attempt_resumed")),
		event("Responses saved", eq("event_name", "attempt_saved")),
		event("Responses submitted", eq("event_name", "attempt_submitted"), eq("component", "Questionnaire")),
		event("Individual Responses report viewed", eq("event_name", "response_viewed")),

		// quiz
		event("Quiz attempt abandoned", eq("event_name", "attempt_abandoned")),
		event("Quiz attempt reviewed", eq("event_name", "attempt_reviewed")),
		event("Quiz attempt started", eq("event_name", "attempt_started")),
		event("Quiz attempt submitted", eq("event_name", "attempt_submitted"), eq("component", "Quiz")),
		event("Quiz attempt summary viewed", eq("event_name", "attempt_summary_viewed")),
		event("Quiz attempt viewed", eq("event_name", "attempt_viewed")),

		// recent activity
		event("Recent activity viewed", eq("event_name", "recent_activity_viewed")),

		// role
		event("Role assigned", eq("event_name", "role_assigned")),
		event("Role unassigned", eq("event_name", "role_unassigned")),
		event("Role updated", eq("event_name", "role_updated")),

		// scheduler
		event("Scheduler booking added", eq("event_name", "booking_added")),
		event("Scheduler booking form viewed", eq("event_name", "booking_form_viewed")),
		event("Scheduler booking removed", eq("event_name", "booking_removed")),

		// scorm
		event("Sco launched", eq("event_name", "sco_launched")),
		event("Submitted SCORM raw score", eq("event_name", "scoreraw_submitted")),
		event("Submitted SCORM status", eq("event_name", "status_submitted")),

		// survey
		event("Survey response submitted", eq("event_name", "response_submitted"), eq("component", "Survey")),

		// tour
		event("Tour ended", eq("event_name", "tour_ended")),
		event("Tour started", eq("event_name", "tour_started")),

		// user
		event("User created", eq("event_name", "user_created")),
		event("User deleted", eq("event_name", "user_deleted")),
		event("User list viewed", eq("event_name", "user_list_viewed")),

		// wiki
		event("Comments viewed", eq("event_name", "comments_viewed"), eq("component", "Wiki")),
		event("Wiki page created", eq("event_name", "page_created")),
		event("Wiki page deleted", eq("event_name", "page_deleted")),
		event("Wiki diff viewed", eq("event_name", "page_diff_viewed")),
		event("Wiki history viewed", eq("event_name", "page_history_viewed")),
		event("Wiki page map viewed", eq("event_name", "page_map_viewed")),
		event("Wiki page updated", eq("event_name", "page_updated")),
		event("Wiki page version deleted", eq("event_name", "page_version_deleted")),
		event("Wiki page version restored", eq("event_name", "page_version_restored")),
		event("Wiki page version viewed", eq("event_name", "page_version_viewed")),
		event("Wiki page viewed", eq("event_name", "page_viewed")),

		// workshop
		event("A submission has been uploaded.", eq("event_name", "assessable_uploaded"), eq("component", "Workshop")),
		event("Submission assessed", eq("event_name", "submission_assessed")),
		event("Submission created", eq("event_name", "submission_created"), eq("component", "Workshop")),
		event("Submission deleted", eq("event_name", "submission_deleted")),
		event("Submission re-assessed", eq("event_name", "submission_reassessed")),
		event("Submission updated", eq("event_name", "submission_updated"), eq("component", "Workshop")),
		event("Submission viewed", eq("event_name", "submission_viewed"), eq("component", "Workshop")),
	}
}

// statusRules flag actions on deleted modules or deleted users. They run
// last: downstream consumers filter on both status and the canonical
// component/event labels written above.
func statusRules() []Rule {
	return []Rule{
		{Target: TargetStatus, Value: string(record.StatusDeleted), When: []Condition{eq("context", "not available")}},
		{Target: TargetStatus, Value: string(record.StatusDeleted), When: []Condition{eq("description", "deleted")}},
		{Target: TargetStatus, Value: string(record.StatusAvailable), When: []Condition{eq("status", "")}},
	}
}
