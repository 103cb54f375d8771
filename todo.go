/*
	Project: Coach Reports - progress tables for coaches and transfer admission for content imports
*/
package coachreports

/*
TODO: paginate report rows (`limit`/`offset` query params) for schools with hundreds of lessons
TODO: postgres: aggregate the latest record per (recipient, item) with DISTINCT ON instead of loading every record
TODO: admin: `fixtures load FILE` command to seed bolt/postgres without restarting the API
*/
