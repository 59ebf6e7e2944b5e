package client

func hasError(err error) bool {
	return err != nil
}

func isEmpty(value string) bool {
	return value == ""
}
