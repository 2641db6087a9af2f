// Package frontier manages the set of URLs to visit for one crawl job.
// A Frontier enforces depth budgets, deduplicates URLs on their
// normalized form, and caps the total number of visits with a hard
// ceiling so link-bomb sites cannot exhaust a job.
//
// Frontier state is scoped to a single job. There is deliberately no
// process-wide visited set: jobs must not interfere with each other and
// must be independently testable.
package frontier
