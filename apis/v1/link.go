// Package v1 defines the messages and gRPC service of the link API. Messages
// travel as JSON using the codec registered by this package.
package v1

// Selector addresses links either by Id or by the fields of Link. Fields
// listed in Undefined select links that lack them. An empty selector matches
// every link.
type Selector struct {
	Id        string         `json:"id,omitempty"`
	Link      map[string]any `json:"link,omitempty"`
	Undefined []string       `json:"undefined,omitempty"`
}

type SortKey struct {
	Field     string `json:"field"`
	Ascending bool   `json:"ascending"`
}

type InsertRequest struct {
	Link map[string]any `json:"link"`
}

type InsertResponse struct {
	Id string `json:"id"`
}

type UpdateRequest struct {
	Selector *Selector      `json:"selector"`
	Set      map[string]any `json:"set,omitempty"`
	Unset    []string       `json:"unset,omitempty"`
}

type UpdateResponse struct {
	Count int64 `json:"count"`
}

type RemoveRequest struct {
	Selector *Selector `json:"selector"`
}

type RemoveResponse struct {
	Count int64 `json:"count"`
}

type FetchRequest struct {
	Selector *Selector `json:"selector"`
	Sort     []SortKey `json:"sort,omitempty"`
	Skip     int       `json:"skip,omitempty"`
	Limit    int       `json:"limit,omitempty"`
}

type FetchResponse struct {
	Links []map[string]any `json:"links"`
}

type WatchRequest struct {
	Event string `json:"event"`
}

// WatchEvent is a link change. Old is empty on insert, New is empty on remove.
type WatchEvent struct {
	Event  string         `json:"event"`
	Old    map[string]any `json:"old,omitempty"`
	New    map[string]any `json:"new,omitempty"`
	UserId string         `json:"userId,omitempty"`
}

func (s *Selector) GetId() string {
	if s == nil {
		return ""
	}
	return s.Id
}

func (r *FetchRequest) GetSelector() *Selector {
	if r == nil {
		return nil
	}
	return r.Selector
}
