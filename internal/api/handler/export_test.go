package handler

var GenerateJWT = generateJWT
