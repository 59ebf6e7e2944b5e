package cluster

func hasError(err error) bool {
	return err != nil
}

func isEmpty(data string) bool {
	return len(data) == 0
}
