package notify

// BuildRecipientList 组装审批通知的收件人集合：运营方地址加上各组关注读者的邮箱，
// 去重，丢弃空地址。
func BuildRecipientList(operator string, followerEmails ...[]string) []string {
	seen := make(map[string]struct{})
	var recipients []string

	add := func(addr string) {
		if addr == "" {
			return
		}
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		recipients = append(recipients, addr)
	}

	add(operator)
	for _, group := range followerEmails {
		for _, addr := range group {
			add(addr)
		}
	}

	return recipients
}
