package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const graphQLEndpoint = "https://api.github.com/graphql"

// GraphQLClient provides access to GitHub's GraphQL API, used for the
// Projects-v2 surface that REST does not cover.
type GraphQLClient struct {
	httpClient *http.Client
	token      string
}

// NewGraphQLClient creates a new GraphQL client with the given token.
func NewGraphQLClient(httpClient *http.Client, token string) *GraphQLClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GraphQLClient{
		httpClient: httpClient,
		token:      token,
	}
}

// graphQLRequest represents a GraphQL request payload.
type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// graphQLResponse represents a GraphQL response.
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

// execute sends a GraphQL query/mutation and returns the response data.
func (c *GraphQLClient) execute(ctx context.Context, query string, variables map[string]interface{}) (json.RawMessage, error) {
	reqBody := graphQLRequest{
		Query:     query,
		Variables: variables,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", graphQLEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Truncate response body to avoid leaking sensitive data in logs
		truncated := string(respBody)
		if len(truncated) > 200 {
			truncated = truncated[:200] + "..."
		}
		return nil, fmt.Errorf("GraphQL request failed with status %d: %s", resp.StatusCode, truncated)
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		return nil, fmt.Errorf("GraphQL error: %s", gqlResp.Errors[0].Message)
	}

	return gqlResp.Data, nil
}

// GetIssueNodeID fetches the GraphQL node ID for an issue.
func (c *GraphQLClient) GetIssueNodeID(ctx context.Context, owner, repo string, number int) (string, error) {
	query := `
		query($owner: String!, $repo: String!, $number: Int!) {
			repository(owner: $owner, name: $repo) {
				issue(number: $number) {
					id
				}
			}
		}
	`
	variables := map[string]interface{}{
		"owner":  owner,
		"repo":   repo,
		"number": number,
	}

	data, err := c.execute(ctx, query, variables)
	if err != nil {
		return "", err
	}

	var result struct {
		Repository struct {
			Issue struct {
				ID string `json:"id"`
			} `json:"issue"`
		} `json:"repository"`
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("failed to parse issue ID: %w", err)
	}

	if result.Repository.Issue.ID == "" {
		return "", fmt.Errorf("issue not found: %s/%s#%d", owner, repo, number)
	}

	return result.Repository.Issue.ID, nil
}

// GetProjectID fetches the node ID of a Projects-v2 board by owner and
// number. ownerType is "orgs" or "users", as parsed from the project URL.
func (c *GraphQLClient) GetProjectID(ctx context.Context, ownerType, owner string, number int) (string, error) {
	entity := "organization"
	if ownerType == "users" {
		entity = "user"
	}

	query := fmt.Sprintf(`
		query($owner: String!, $number: Int!) {
			%s(login: $owner) {
				projectV2(number: $number) {
					id
				}
			}
		}
	`, entity)
	variables := map[string]interface{}{
		"owner":  owner,
		"number": number,
	}

	data, err := c.execute(ctx, query, variables)
	if err != nil {
		return "", err
	}

	var result map[string]struct {
		ProjectV2 struct {
			ID string `json:"id"`
		} `json:"projectV2"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("failed to parse project ID: %w", err)
	}

	id := result[entity].ProjectV2.ID
	if id == "" {
		return "", fmt.Errorf("project not found: %s/%s/projects/%d", ownerType, owner, number)
	}
	return id, nil
}

// ProjectField describes one board field. Single-select fields carry their
// option list.
type ProjectField struct {
	ID      string
	Name    string
	Options []ProjectFieldOption
}

// ProjectFieldOption is one choice of a single-select field.
type ProjectFieldOption struct {
	ID   string
	Name string
}

// GetProjectFields loads the board's fields and single-select options.
// Called once per run; the board synchronizer caches the result.
func (c *GraphQLClient) GetProjectFields(ctx context.Context, projectID string) ([]ProjectField, error) {
	query := `
		query($project: ID!) {
			node(id: $project) {
				... on ProjectV2 {
					fields(first: 50) {
						nodes {
							... on ProjectV2FieldCommon {
								id
								name
							}
							... on ProjectV2SingleSelectField {
								id
								name
								options {
									id
									name
								}
							}
						}
					}
				}
			}
		}
	`
	variables := map[string]interface{}{"project": projectID}

	data, err := c.execute(ctx, query, variables)
	if err != nil {
		return nil, err
	}

	var result struct {
		Node struct {
			Fields struct {
				Nodes []struct {
					ID      string `json:"id"`
					Name    string `json:"name"`
					Options []struct {
						ID   string `json:"id"`
						Name string `json:"name"`
					} `json:"options"`
				} `json:"nodes"`
			} `json:"fields"`
		} `json:"node"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse project fields: %w", err)
	}

	fields := make([]ProjectField, 0, len(result.Node.Fields.Nodes))
	for _, n := range result.Node.Fields.Nodes {
		if n.ID == "" {
			continue
		}
		f := ProjectField{ID: n.ID, Name: n.Name}
		for _, o := range n.Options {
			f.Options = append(f.Options, ProjectFieldOption{ID: o.ID, Name: o.Name})
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// GetItemForIssue finds the board item holding the given issue, if any.
// Returns an empty string when the issue is not on the board.
func (c *GraphQLClient) GetItemForIssue(ctx context.Context, projectID, owner, repo string, number int) (string, error) {
	query := `
		query($owner: String!, $repo: String!, $number: Int!) {
			repository(owner: $owner, name: $repo) {
				issue(number: $number) {
					projectItems(first: 20) {
						nodes {
							id
							project {
								id
							}
						}
					}
				}
			}
		}
	`
	variables := map[string]interface{}{
		"owner":  owner,
		"repo":   repo,
		"number": number,
	}

	data, err := c.execute(ctx, query, variables)
	if err != nil {
		return "", err
	}

	var result struct {
		Repository struct {
			Issue struct {
				ProjectItems struct {
					Nodes []struct {
						ID      string `json:"id"`
						Project struct {
							ID string `json:"id"`
						} `json:"project"`
					} `json:"nodes"`
				} `json:"projectItems"`
			} `json:"issue"`
		} `json:"repository"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("failed to parse project items: %w", err)
	}

	for _, n := range result.Repository.Issue.ProjectItems.Nodes {
		if n.Project.ID == projectID {
			return n.ID, nil
		}
	}
	return "", nil
}

// AddItem adds an issue to the board and returns the new item's ID.
func (c *GraphQLClient) AddItem(ctx context.Context, projectID, issueNodeID string) (string, error) {
	mutation := `
		mutation($project: ID!, $content: ID!) {
			addProjectV2ItemById(input: {projectId: $project, contentId: $content}) {
				item {
					id
				}
			}
		}
	`
	variables := map[string]interface{}{
		"project": projectID,
		"content": issueNodeID,
	}

	data, err := c.execute(ctx, mutation, variables)
	if err != nil {
		return "", err
	}

	var result struct {
		AddProjectV2ItemByID struct {
			Item struct {
				ID string `json:"id"`
			} `json:"item"`
		} `json:"addProjectV2ItemById"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("failed to parse add item result: %w", err)
	}

	if result.AddProjectV2ItemByID.Item.ID == "" {
		return "", fmt.Errorf("add item failed: empty item ID returned")
	}
	return result.AddProjectV2ItemByID.Item.ID, nil
}

// SetItemSingleSelect sets a single-select field on a board item.
func (c *GraphQLClient) SetItemSingleSelect(ctx context.Context, projectID, itemID, fieldID, optionID string) error {
	mutation := `
		mutation($project: ID!, $item: ID!, $field: ID!, $option: String!) {
			updateProjectV2ItemFieldValue(input: {
				projectId: $project,
				itemId: $item,
				fieldId: $field,
				value: {singleSelectOptionId: $option}
			}) {
				projectV2Item {
					id
				}
			}
		}
	`
	variables := map[string]interface{}{
		"project": projectID,
		"item":    itemID,
		"field":   fieldID,
		"option":  optionID,
	}

	_, err := c.execute(ctx, mutation, variables)
	return err
}

// SetItemDate sets a date field on a board item. date is YYYY-MM-DD.
func (c *GraphQLClient) SetItemDate(ctx context.Context, projectID, itemID, fieldID, date string) error {
	mutation := `
		mutation($project: ID!, $item: ID!, $field: ID!, $date: Date!) {
			updateProjectV2ItemFieldValue(input: {
				projectId: $project,
				itemId: $item,
				fieldId: $field,
				value: {date: $date}
			}) {
				projectV2Item {
					id
				}
			}
		}
	`
	variables := map[string]interface{}{
		"project": projectID,
		"item":    itemID,
		"field":   fieldID,
		"date":    date,
	}

	_, err := c.execute(ctx, mutation, variables)
	return err
}
