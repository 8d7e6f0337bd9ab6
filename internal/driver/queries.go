package driver

const (
	SaveQueryQuery = `
		MERGE (q:Query {id: $query_id})
		SET q.created_at = $created_at,
			q.shape = $shape,
			q.description = $description,
			q.result_count = $result_count
		RETURN q.id AS id
	`

	SaveKGNodesQuery = `
		UNWIND $nodes AS node
		MERGE (n:KGNode {id: node.id})
		SET n.name = node.name,
			n.categories = node.categories
		WITH n
		MATCH (q:Query {id: $query_id})
		MERGE (q)-[:RETURNED]->(n)
		RETURN count(n) AS count
	`

	SaveKGEdgesQuery = `
		UNWIND $edges AS edge
		MATCH (s:KGNode {id: edge.subject})
		MATCH (o:KGNode {id: edge.object})
		MERGE (s)-[e:KG_EDGE {id: edge.id}]->(o)
		SET e.predicate = edge.predicate,
			e.primary_source = edge.primary_source,
			e.support_graphs = edge.support_graphs,
			e.query_id = $query_id
		RETURN count(e) AS count
	`

	SaveAuxGraphsQuery = `
		UNWIND $aux_graphs AS aux
		MERGE (a:AuxGraph {id: aux.id})
		SET a.edges = aux.edges,
			a.query_id = $query_id
		RETURN count(a) AS count
	`

	SaveResultsQuery = `
		MATCH (q:Query {id: $query_id})
		UNWIND $results AS result
		MERGE (r:Result {id: result.id})
		SET r.node_ids = result.node_ids,
			r.edge_ids = result.edge_ids
		MERGE (q)-[:HAS_RESULT]->(r)
		RETURN count(r) AS count
	`

	GetQueryCountsQuery = `
		MATCH (q:Query {id: $query_id})
		OPTIONAL MATCH (q)-[:HAS_RESULT]->(r:Result)
		WITH q, count(r) AS results
		OPTIONAL MATCH (q)-[:RETURNED]->(n:KGNode)
		RETURN results, count(n) AS nodes
	`

	DeleteQueryQuery = `
		MATCH (q:Query {id: $query_id})
		OPTIONAL MATCH (q)-[:HAS_RESULT]->(r:Result)
		OPTIONAL MATCH (a:AuxGraph {query_id: $query_id})
		DETACH DELETE q, r, a
	`
)
