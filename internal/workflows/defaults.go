package workflows

import "github.com/gradedesk/gradedesk/pkg/clients"

// DefaultRegistry returns a registry with every built-in workflow wired to
// the given client set.
func DefaultRegistry(set *clients.Set) *Registry {
	r := NewRegistry()
	r.Register(NewEssayGrading(set))
	r.Register(NewBubbleTest(set))
	r.Register(NewDocumentScrub(set))
	r.Register(NewEmailReports(set))
	r.Register(NewEssayRegrade(set))
	r.Register(NewTeacherReview(set))
	r.Register(NewTestBuilder(set))
	r.Register(NewReadingHandout(set))
	return r
}
