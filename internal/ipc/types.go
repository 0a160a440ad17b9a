package ipc

import (
	"github.com/nihilian/ncheditor/pkg/api"
	"github.com/nihilian/ncheditor/pkg/listslice"
)

// Command names understood by the daemon.
const (
	CmdPackageUID       = "package.uid"
	CmdPackageCreate    = "package.create"
	CmdChannelList      = "channel.list"
	CmdChannelGet       = "channel.get"
	CmdChannelUpdate    = "channel.update"
	CmdChannelCreate    = "channel.create"
	CmdGroupList        = "group.list"
	CmdGroupGet         = "group.get"
	CmdGroupUpdate      = "group.update"
	CmdGroupCreate      = "group.create"
	CmdContinuationPull = "continuation.pull"
)

// Well-known failure messages carried in Response.Msg.
const (
	MsgNotFound   = "not found"
	MsgConflict   = "conflict"
	MsgBadRequest = "bad request"
)

// Message is a command sent from the CLI to the daemon.
type Message struct {
	Name           string            `json:"name"`
	Package        string            `json:"package,omitempty"`
	ID             string            `json:"id,omitempty"`
	User           int               `json:"user,omitempty"`
	AppID          int               `json:"app_id,omitempty"`
	IncludeDeleted bool              `json:"include_deleted,omitempty"`
	Fields         map[string]string `json:"fields,omitempty"`
	Handle         listslice.Handle  `json:"handle"`
	Record         api.Record        `json:"record,omitempty"`
	IfFingerprint  string            `json:"if_fingerprint,omitempty"`
}

// Response is the daemon reply. List commands carry the first chunk of a
// list transfer in Chunk; continuation pulls carry the next one.
type Response struct {
	OK     bool       `json:"ok"`
	Msg    string     `json:"msg,omitempty"`
	Record api.Record `json:"record,omitempty"`
	Chunk  []byte     `json:"chunk,omitempty"`
	UID    int        `json:"uid,omitempty"`
}
