package queue

// Sort orders the queue ascending by case-insensitive byte comparison.
// Existing nodes are relinked; nothing is allocated. Equal values may end up
// in any relative order.
func (q *Queue) Sort() {
	if q == nil || q.head == nil || q.head == q.tail {
		return
	}

	q.head = mergeSort(q.head)

	tail := q.head
	for tail.next != nil {
		tail = tail.next
	}
	q.tail = tail
}

func mergeSort(head *qNode) *qNode {
	if head == nil || head.next == nil {
		return head
	}

	left, right := split(head)
	return merge(mergeSort(left), mergeSort(right))
}

// split cuts the list after its midpoint. For odd lengths the left half gets
// the extra node.
func split(head *qNode) (*qNode, *qNode) {
	slow, fast := head, head.next
	for fast != nil && fast.next != nil {
		slow = slow.next
		fast = fast.next.next
	}

	right := slow.next
	slow.next = nil
	return head, right
}

func merge(left, right *qNode) *qNode {
	var head *qNode
	link := &head

	for left != nil && right != nil {
		if CompareFold(left.value, right.value) <= 0 {
			*link = left
			left = left.next
		} else {
			*link = right
			right = right.next
		}
		link = &(*link).next
	}

	if left != nil {
		*link = left
	} else {
		*link = right
	}

	return head
}

// CompareFold compares a and b byte by byte with ASCII letters folded to
// lower case, like strcasecmp.
func CompareFold(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		ca, cb := lower(a[i]), lower(b[i])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
