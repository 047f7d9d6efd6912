// Package domain models personal climbing session logs and the records
// derived from them for dashboarding.
//
// # Session Logs
//
// A session log is a YAML file written by hand after a climbing session:
//
//	location: Altitude Kanata
//	style: indoor bouldering, indoor lead
//	date: 2022-01-08
//	time:
//	  start: 6:30 PM
//	  end: 9 PM
//	counter:
//	  - {grade: V3/V4, flash: 1, redpoint: 2, repeat: 0, attempts: 3}
//	projects:
//	  - {name: The Crimp Problem, location: cave, style: [crimp], grade: V4/V5,
//	     flash: 0, redpoint: 1, repeat: 0, attempts: 2}
//
// Only location, style, date and time are required. Everything else is
// defaulted by [NormalizeSessionLog].
//
// Time format:
//
//	12-hour "H:MM AM", "HH:MM PM", "H AM", "HH PM" or zero-padded 24-hour "HH:MM".
//	A bare "2:30" is ambiguous and rejected; write "2:30 PM" or "14:30".
//
// # Ascent Styles
//
// Every tally distinguishes how a climb was completed:
//
//	onsight   first try, no prior beta (tracked at outdoor locations only)
//	flash     first try with beta
//	redpoint  sent after earlier failed tries
//	repeat    sent again after a previous session's send
//	attempts  unsuccessful tries
//
// completed = onsight + flash + redpoint + repeat, total = completed + attempts.
//
// # Grading
//
// Each [Location] carries its own ordered grading scale (V scale, Font scale,
// the Altitude gym scale with its separate "Kids - " grades, or a colour
// scale). After normalization a session holds exactly one [Counter] per grade
// in its location's scale.
//
// # Projects
//
// A [Project] is a named climb tracked across sessions. The [Ledger] folds all
// sessions in date order and keeps a running cumulative tally per project
// name, marking the latest occurrence with IsLast.
package domain
