package services

import (
	"math"
	"sort"
	"time"

	"github.com/PrayerWall/models"
)

// InviteNode is the flat user row the tree builder consumes.
type InviteNode struct {
	User_Profile_ID    int       `json:"userProfileId" db:"user_profile_id"`
	Display_Name       string    `json:"displayName" db:"display_name"`
	Invited_By_User_ID *int      `json:"invitedByUserId" db:"invited_by_user_id"`
	Datetime_Create    time.Time `json:"datetimeCreate" db:"datetime_create"`
}

// TopInviter is one entry in the stats leaderboard.
type TopInviter struct {
	Display_Name string `json:"display_name"`
	Invite_Count int    `json:"invite_count"`
}

// InviteStats is the aggregate payload for the invite dashboard.
type InviteStats struct {
	Total_Users         int          `json:"total_users"`
	Total_Invites_Sent  int          `json:"total_invites_sent"`
	Used_Invites        int          `json:"used_invites"`
	Unused_Invites      int          `json:"unused_invites"`
	Users_With_Inviters int          `json:"users_with_inviters"`
	Max_Depth           int          `json:"max_depth"`
	Top_Inviters        []TopInviter `json:"top_inviters"`
	Recent_Growth       int          `json:"recent_growth"`
	Invite_Success_Rate int          `json:"invite_success_rate"`
}

// InviteTree reconstructs the invitation forest from flat parent-pointer
// rows. Edges whose inviter no longer exists are dropped, so users on a
// broken branch are simply unreachable rather than an error.
type InviteTree struct {
	nodes    map[int]InviteNode
	children map[int][]int
	roots    []int
}

func NewInviteTree(users []InviteNode) *InviteTree {
	t := &InviteTree{
		nodes:    make(map[int]InviteNode, len(users)),
		children: make(map[int][]int),
	}
	for _, u := range users {
		t.nodes[u.User_Profile_ID] = u
	}
	for _, u := range users {
		if u.Invited_By_User_ID == nil {
			t.roots = append(t.roots, u.User_Profile_ID)
			continue
		}
		if _, ok := t.nodes[*u.Invited_By_User_ID]; ok {
			t.children[*u.Invited_By_User_ID] = append(t.children[*u.Invited_By_User_ID], u.User_Profile_ID)
		}
	}
	for id := range t.children {
		sort.Ints(t.children[id])
	}
	sort.Ints(t.roots)
	return t
}

// Descendants collects every user transitively invited by userID, breadth
// first. A visited set guards against inviter cycles from corrupt data, so
// traversal always terminates. Unknown users yield an empty list.
func (t *InviteTree) Descendants(userID int) []InviteNode {
	if _, ok := t.nodes[userID]; !ok {
		return nil
	}

	visited := map[int]bool{userID: true}
	queue := append([]int(nil), t.children[userID]...)
	var result []InviteNode

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		result = append(result, t.nodes[id])
		queue = append(queue, t.children[id]...)
	}
	return result
}

// InvitePath is the inviter chain from the root down to userID, inclusive.
// If userID does not exist the path is empty; if an ancestor reference
// dangles, the chain starts at the last ancestor that does exist.
func (t *InviteTree) InvitePath(userID int) []InviteNode {
	node, ok := t.nodes[userID]
	if !ok {
		return nil
	}

	visited := map[int]bool{}
	var chain []InviteNode
	for {
		if visited[node.User_Profile_ID] {
			break
		}
		visited[node.User_Profile_ID] = true
		chain = append(chain, node)

		if node.Invited_By_User_ID == nil {
			break
		}
		parent, ok := t.nodes[*node.Invited_By_User_ID]
		if !ok {
			break
		}
		node = parent
	}

	// reverse into root-to-leaf order
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// MaxDepth is the deepest edge count across every root tree, not just one
// designated root.
func (t *InviteTree) MaxDepth() int {
	max := 0
	for _, root := range t.roots {
		visited := map[int]bool{root: true}
		depth := 0
		frontier := t.children[root]
		for len(frontier) > 0 {
			var next []int
			advanced := false
			for _, id := range frontier {
				if visited[id] {
					continue
				}
				visited[id] = true
				advanced = true
				next = append(next, t.children[id]...)
			}
			// a level of nothing but revisits adds no depth
			if !advanced {
				break
			}
			depth++
			frontier = next
		}
		if depth > max {
			max = depth
		}
	}
	return max
}

// Stats computes the aggregate invite dashboard payload. Recent growth is
// signups within the last 30 days.
func (t *InviteTree) Stats(tokens []models.InviteToken, now time.Time) InviteStats {
	stats := InviteStats{
		Total_Users:        len(t.nodes),
		Total_Invites_Sent: len(tokens),
		Max_Depth:          t.MaxDepth(),
		Top_Inviters:       []TopInviter{},
	}

	for _, tok := range tokens {
		if tok.Used {
			stats.Used_Invites++
		}
	}
	stats.Unused_Invites = stats.Total_Invites_Sent - stats.Used_Invites
	if stats.Total_Invites_Sent > 0 {
		rate := float64(stats.Used_Invites) / float64(stats.Total_Invites_Sent) * 100
		stats.Invite_Success_Rate = int(math.Round(rate))
	}

	cutoff := now.AddDate(0, 0, -30)
	for _, u := range t.nodes {
		if u.Invited_By_User_ID != nil {
			stats.Users_With_Inviters++
		}
		if u.Datetime_Create.After(cutoff) {
			stats.Recent_Growth++
		}
	}

	type inviterCount struct {
		id    int
		count int
	}
	var counts []inviterCount
	for id, kids := range t.children {
		if len(kids) > 0 {
			counts = append(counts, inviterCount{id: id, count: len(kids)})
		}
	}
	sort.Slice(counts, func(a, b int) bool {
		if counts[a].count != counts[b].count {
			return counts[a].count > counts[b].count
		}
		return counts[a].id < counts[b].id
	})
	limit := len(counts)
	if limit > 5 {
		limit = 5
	}
	for _, c := range counts[:limit] {
		stats.Top_Inviters = append(stats.Top_Inviters, TopInviter{
			Display_Name: t.nodes[c.id].Display_Name,
			Invite_Count: c.count,
		})
	}

	return stats
}
