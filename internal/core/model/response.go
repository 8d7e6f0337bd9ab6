package model

import "fmt"

type Message struct {
	QueryGraph      *QueryGraph                `json:"query_graph"`
	KnowledgeGraph  *KnowledgeGraph            `json:"knowledge_graph"`
	AuxiliaryGraphs map[string]*AuxiliaryGraph `json:"auxiliary_graphs"`
	Results         []Result                   `json:"results"`
}

type WorkflowStep struct {
	ID string `json:"id"`
}

type Response struct {
	Description    string         `json:"description,omitempty"`
	SchemaVersion  string         `json:"schema_version,omitempty"`
	BiolinkVersion string         `json:"biolink_version,omitempty"`
	Workflow       []WorkflowStep `json:"workflow,omitempty"`
	Message        Message        `json:"message"`
	Logs           []LogEntry     `json:"logs"`
}

func SuccessDescription(results int) string {
	return fmt.Sprintf("Query processed successfully, retrieved %d results.", results)
}
