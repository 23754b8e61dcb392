package validation

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moncfg-backend/internal/domain/models"
)

func link(host, template string) models.LinkEdge {
	return models.LinkEdge{Host: host, Template: template, Kind: models.LinkTemplateTemplate}
}

func TestBuildLinkGraph_Rejects(t *testing.T) {
	cases := []struct {
		name  string
		edges []models.LinkEdge
		kind  string
	}{
		{"self loop", []models.LinkEdge{link("T1", "T1")}, KindCircularLinkage},
		{"two node cycle without root", []models.LinkEdge{link("A", "B"), link("B", "A")}, KindCircularLinkage},
		{"cycle below a root", []models.LinkEdge{link("H", "A"), link("A", "B"), link("B", "C"), link("C", "A")}, KindCircularLinkage},
		{"cycle disconnected from a valid tree", []models.LinkEdge{link("H", "T"), link("X", "Y"), link("Y", "X")}, KindCircularLinkage},
		{"diamond", []models.LinkEdge{link("H", "A"), link("H", "B"), link("A", "C"), link("B", "C")}, KindDuplicateLinkage},
		{"direct and transitive", []models.LinkEdge{link("H", "A"), link("H", "B"), link("A", "B")}, KindDuplicateLinkage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := BuildLinkGraph(tc.edges)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.Equal(t, tc.kind, ErrorKind(err))
		})
	}
}

func TestBuildLinkGraph_CyclePath(t *testing.T) {
	_, err := BuildLinkGraph([]models.LinkEdge{link("H", "A"), link("A", "B"), link("B", "A")})
	var circular *CircularLinkageError
	require.True(t, errors.As(err, &circular))
	assert.Equal(t, []string{"A", "B", "A"}, circular.Path)

	_, err = BuildLinkGraph([]models.LinkEdge{link("T1", "T1")})
	require.True(t, errors.As(err, &circular))
	assert.Equal(t, []string{"T1", "T1"}, circular.Path)
}

func TestBuildLinkGraph_Order(t *testing.T) {
	g, err := BuildLinkGraph([]models.LinkEdge{
		{Host: "H2", Template: "H1", Kind: models.LinkTemplateTemplate},
		{Host: "H1", Template: "T1", Kind: models.LinkTemplateHost},
		{Host: "H3", Template: "T1", Kind: models.LinkTemplateHost},
		{Host: "H1", Template: "T1", Kind: models.LinkTemplateHost},
	})
	require.NoError(t, err)

	pos := make(map[string]int)
	for i, n := range g.Order() {
		pos[n] = i
	}
	assert.Len(t, g.Order(), 4)
	assert.Less(t, pos["T1"], pos["H1"])
	assert.Less(t, pos["H1"], pos["H2"])
	assert.Less(t, pos["T1"], pos["H3"])
	assert.Equal(t, 3, g.Depth())

	assert.Equal(t, []string{"T1"}, g.Templates("H1"))
	assert.Equal(t, []string{"H1", "H3"}, g.Dependents("T1"))
	assert.Equal(t, []string{"H1", "H3", "H2"}, g.AllDependents("T1"))
}

func TestBuildDependencyGraph_AllowsSharedDependencies(t *testing.T) {
	edges := []models.LinkEdge{
		{Host: "t1", Template: "t2", Kind: models.LinkTriggerDependency},
		{Host: "t1", Template: "t3", Kind: models.LinkTriggerDependency},
		{Host: "t2", Template: "t4", Kind: models.LinkTriggerDependency},
		{Host: "t3", Template: "t4", Kind: models.LinkTriggerDependency},
	}
	_, err := BuildDependencyGraph(edges)
	assert.NoError(t, err)

	_, err = BuildDependencyGraph(append(edges, models.LinkEdge{Host: "t4", Template: "t1", Kind: models.LinkTriggerDependency}))
	var circular *CircularLinkageError
	require.True(t, errors.As(err, &circular))
	assert.Equal(t, models.LinkTriggerDependency, circular.Kind)
}

func TestBuildLinkGraph_Empty(t *testing.T) {
	g, err := BuildLinkGraph(nil)
	require.NoError(t, err)
	assert.Empty(t, g.Order())
}
