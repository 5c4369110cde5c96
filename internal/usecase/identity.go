package usecase

// リクエストの認証情報。UserID が0なら匿名
type Identity struct {
	UserID int64
}

func Anonymous() Identity {
	return Identity{}
}

func (i Identity) IsAnonymous() bool {
	return i.UserID <= 0
}
