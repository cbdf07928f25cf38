package variableitem

const Resource = "variable item"
