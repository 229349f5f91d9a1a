package driver

var indexQueries = []string{
	"CREATE INDEX ON :Run(run_id);",
	"CREATE INDEX ON :Contact(run_id);",
	"CREATE INDEX ON :Contact(index);",
	"CREATE INDEX ON :MergeGroup(uuid);",
	"CREATE INDEX ON :MergeGroup(run_id);",
}

const (
	SaveRunQuery = `
		MERGE (r:Run {run_id: $run_id})
		SET r.created_at = $created_at,
			r.total_contacts = $total_contacts,
			r.fuzzy_threshold = $fuzzy_threshold
		RETURN r.run_id AS run_id
	`

	SaveContactsQuery = `
		UNWIND $contacts AS c
		MERGE (n:Contact {run_id: $run_id, index: c.index})
		SET n.name = c.name,
			n.protected = c.protected
	`

	SaveDuplicateEdgesQuery = `
		UNWIND $edges AS e
		MATCH (a:Contact {run_id: $run_id, index: e.source})
		MATCH (b:Contact {run_id: $run_id, index: e.target})
		MERGE (a)-[d:DUPLICATE_OF]->(b)
		SET d.rule = e.rule
	`

	SaveMergeGroupsQuery = `
		UNWIND $groups AS g
		MERGE (m:MergeGroup {uuid: g.uuid})
		SET m.run_id = $run_id,
			m.merged_name = g.merged_name,
			m.criteria = g.criteria
		WITH m, g
		UNWIND g.members AS idx
		MATCH (c:Contact {run_id: $run_id, index: idx})
		MERGE (m)-[:HAS_MEMBER]->(c)
	`

	GetRunGroupsQuery = `
		MATCH (m:MergeGroup {run_id: $run_id})-[:HAS_MEMBER]->(c:Contact)
		WITH m, c ORDER BY c.index
		RETURN m.uuid AS uuid, m.merged_name AS merged_name, collect(c.index) AS members
		ORDER BY members[0]
	`

	DeleteRunQuery = `
		MATCH (n {run_id: $run_id})
		DETACH DELETE n
	`
)
