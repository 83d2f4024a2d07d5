package tui

import (
	"github.com/yueh722/Web3-news-app/internal/news"
	"github.com/yueh722/Web3-news-app/internal/view"
)

type fetchDoneMsg struct {
	req view.Request
	res news.FetchResult
}

type commentDoneMsg struct {
	dateKey string
	rowID   string
	text    string
	res     news.CommentResult
}

type browserErrMsg struct {
	err error
}
